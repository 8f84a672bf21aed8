// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package seqlock provides a wait-free, version-stamped single-slot cell
// and a fixed-length array of cells, the building block that the ring
// package assembles into bounded multi-producer/multi-consumer queues.
//
// A [Cell] never blocks a writer on a reader or another writer in the
// single-producer path: a write always succeeds immediately by bumping the
// version to odd, copying the payload, then bumping it to the next even
// value. A concurrent reader that samples the version before and after its
// copy and finds it unchanged and even has a consistent snapshot; otherwise
// it must retry (torn read) or report that it was sped past (stale read).
//
// Cells never fail a write and never report "full": a producer that outruns
// every consumer simply overwrites data no one finished reading, which
// surfaces to consumers as [ErrSpedPast] rather than backpressure. This is
// the core trade this package makes against a conventional FAA/SCQ bounded
// queue, which blocks a producer on a full buffer instead.
package seqlock
