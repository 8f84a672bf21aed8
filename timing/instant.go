// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package timing

import "time"

// processStart anchors Instant's zero point. Every Instant is a count of
// nanoseconds since this process started, taken from Go's monotonic clock
// reading rather than a syscall-backed tick counter.
var processStart = time.Now()

// Instant is a cheap, process-local, monotonically nondecreasing point in
// time. It is not comparable across processes or machines; use [Nanos] for
// that.
type Instant uint64

// Now returns the current Instant.
func Now() Instant {
	return Instant(time.Since(processStart))
}

// Duration is the signed elapsed time between two [Instant] values,
// expressed as nanoseconds.
type Duration int64

// Sub returns the duration from other to i. The result is negative if
// other is later than i.
func (i Instant) Sub(other Instant) Duration {
	return Duration(int64(i) - int64(other))
}

// Add returns i advanced by d.
func (i Instant) Add(d Duration) Instant {
	return Instant(int64(i) + int64(d))
}

// AsDuration reinterprets i's raw nanosecond count as a [Duration], used
// when i already holds a delta rather than an absolute point (as with
// [PublishDelta.Delta]).
func (i Instant) AsDuration() Duration {
	return Duration(i)
}

// Elapsed returns the Duration since i.
func (i Instant) Elapsed() Duration {
	return Now().Sub(i)
}

// Std converts d to a [time.Duration].
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DurationFromStd converts a [time.Duration] into a [Duration].
func DurationFromStd(d time.Duration) Duration {
	return Duration(d)
}
