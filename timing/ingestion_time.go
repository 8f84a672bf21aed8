// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package timing

// IngestionTime pairs a wall-clock reading with a process-local monotonic
// reading taken at the same instant: the real value is what gets shown to
// an operator or persisted across a restart, the internal value is what
// every in-process latency computation (PublishDelta, TrackingTimestamp)
// actually subtracts against.
type IngestionTime struct {
	real     Nanos
	internal Instant
}

// NewIngestionTime pairs an explicit real and internal reading, primarily
// for tests that need to mock the clock.
func NewIngestionTime(real Nanos, internal Instant) IngestionTime {
	return IngestionTime{real: real, internal: internal}
}

// IngestionTimeNow captures the current wall-clock and monotonic time as a
// single IngestionTime.
func IngestionTimeNow() IngestionTime {
	return IngestionTime{real: NanosNow(), internal: Now()}
}

// Real returns the wall-clock component.
func (t IngestionTime) Real() Nanos {
	return t.real
}

// Internal returns the monotonic component.
func (t IngestionTime) Internal() Instant {
	return t.internal
}
