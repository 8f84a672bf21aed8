// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package timing

import "time"

// Nanos is a wall-clock timestamp expressed as nanoseconds since the Unix
// epoch. Unlike [Instant], it is meaningful across process and machine
// boundaries, which is why every wire-visible timestamp in this module
// (the framed TCP send timestamp, in particular) is a Nanos, not an
// Instant.
type Nanos uint64

// NanosNow returns the current wall-clock time as Nanos.
func NanosNow() Nanos {
	return Nanos(time.Now().UnixNano())
}

// Time converts n back to a [time.Time] for formatting or comparison with
// ordinary Go time values.
func (n Nanos) Time() time.Time {
	return time.Unix(0, int64(n))
}

// Add returns n advanced by d.
func (n Nanos) Add(d time.Duration) Nanos {
	return Nanos(int64(n) + int64(d))
}

// Sub returns the signed duration from other to n.
func (n Nanos) Sub(other Nanos) time.Duration {
	return time.Duration(int64(n) - int64(other))
}
