// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tile

import "code.hybscloud.com/atomix"

// StopFlag is the process-wide cooperative shutdown signal every tile's
// loop driver polls between iterations. A zero value means "running";
// a non-zero value holds the signal number that requested shutdown (or
// [stopRequestedScope] for an in-process request with no corresponding
// OS signal).
type StopFlag struct {
	v atomix.Uint64
}

// stopRequestedScope is the sentinel [StopFlag] value stored by
// [StopFlag.RequestScope], distinguishing a programmatic stop request
// from one driven by an actual OS signal number.
const stopRequestedScope = ^uint64(0)

// NewStopFlag returns a flag in the running state.
func NewStopFlag() *StopFlag {
	return &StopFlag{}
}

// Requested reports whether shutdown has been requested.
func (f *StopFlag) Requested() bool {
	return f.v.LoadAcquire() != 0
}

// Signal returns the OS signal number that requested shutdown, or 0 if
// shutdown was requested programmatically or not at all.
func (f *StopFlag) Signal() int {
	v := f.v.LoadAcquire()
	if v == stopRequestedScope {
		return 0
	}
	return int(v)
}

// RequestBySignal records sig as the reason for shutdown. It only takes
// effect the first time it is called; a later signal does not overwrite
// an earlier one.
func (f *StopFlag) RequestBySignal(sig int) {
	f.v.CompareAndSwapAcqRel(0, uint64(sig))
}

// RequestScope requests shutdown without attributing it to any OS
// signal, the form [Adapter.RequestStopScope] uses.
func (f *StopFlag) RequestScope() {
	f.v.CompareAndSwapAcqRel(0, stopRequestedScope)
}

// Reset clears the flag back to running, for tests that reuse one flag
// across multiple tile lifecycles.
func (f *StopFlag) Reset() {
	f.v.StoreRelease(0)
}
