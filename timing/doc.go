// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package timing provides the small set of time types this module's
// transport and tile layers pass around instead of [time.Time] directly:
// a cheap monotonic [Instant] for intra-process latency bookkeeping, a
// wall-clock [Nanos] for anything that crosses a process or machine
// boundary, a packed [PublishDelta]/[TrackingTimestamp] pair for carrying
// "who published this and how long after ingestion" inside a message
// without inflating its size, an [InternalMessage] envelope that attaches
// that tracking data to a payload, and a [Repeater] for "has at least this
// interval elapsed" polling inside a hot loop.
//
// The original system these types are modeled on reads an rdtscp-backed
// tick counter for Instant; no equivalent crate surfaces anywhere in the
// Go ecosystem corpus this module draws on, so Instant is built directly
// on Go's monotonic clock reading (the part of [time.Now] that does not
// do a syscall on Linux/amd64), which already has the property the
// original was chasing: a cheap, always-moving-forward clock.
package timing
