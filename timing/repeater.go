// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package timing

// Repeater answers "has at least this interval elapsed since I last
// fired" without allocating or blocking, the shape a tile's loop body
// uses to do something (sample rusage, emit a telemetry batch) once per
// time interval regardless of how fast the loop itself spins.
type Repeater struct {
	interval  Duration
	lastActed Instant
}

// NewRepeater returns a Repeater that fires once every interval, starting
// from a last-acted instant one interval in the past so it fires
// immediately on the first check.
func NewRepeater(interval Duration) Repeater {
	return Repeater{interval: interval, lastActed: Now().Add(-interval)}
}

// Maybe calls f with the elapsed duration if interval has passed since the
// last fire, and resets the clock.
func (r *Repeater) Maybe(f func(elapsed Duration)) {
	el := r.lastActed.Elapsed()
	if el >= r.interval {
		f(el)
		r.lastActed = Now()
	}
}

// Fired reports whether interval has passed since the last fire, resetting
// the clock if so.
func (r *Repeater) Fired() bool {
	el := r.lastActed.Elapsed()
	if el >= r.interval {
		r.lastActed = Now()
		return true
	}
	return false
}

// Interval returns the configured interval.
func (r *Repeater) Interval() Duration {
	return r.interval
}

// SetInterval replaces the configured interval.
func (r *Repeater) SetInterval(interval Duration) {
	r.interval = interval
}

// Reset marks the repeater as having just fired, without calling back.
func (r *Repeater) Reset() {
	r.lastActed = Now()
}

// ForceFire marks the repeater as overdue, so the next [Repeater.Fired] or
// [Repeater.Maybe] call fires unconditionally.
func (r *Repeater) ForceFire() {
	r.lastActed = Now().Add(-r.interval)
}
