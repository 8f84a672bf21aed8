// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring assembles [seqlock.Cell] values into a fixed-capacity,
// power-of-two-length bounded queue that one or more producers and one or
// more consumers can share across goroutines within a process, or across
// processes over a POSIX shared-memory region opened via
// [golang.org/x/sys/unix].
//
// Unlike a conventional FAA/SCQ bounded queue, Ring never blocks a
// producer on a full buffer: a producer that laps a slow consumer simply
// overwrites the oldest unread record, and the consumer discovers the
// overwrite the next time it reads, as [seqlock.ErrSpedPast]. This module
// favors freshness over completeness: the right trade for live market
// or sensor data, wrong for anything that needs every record delivered.
package ring
