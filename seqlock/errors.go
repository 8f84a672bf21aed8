// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package seqlock

import "code.hybscloud.com/iox"

// ErrEmpty indicates a cell has never been written (version < 2).
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency: an
// empty cell is a control-flow signal, not a failure, exactly like a full
// or empty lock-free queue elsewhere in this module family.
var ErrEmpty = iox.ErrWouldBlock

// ErrSpedPast indicates a reader's expected version is older than the
// current slot content by at least one full lap: the producer(s) wrote
// over the slot before the reader finished with the version it expected.
// The reader lost data, not just raced a torn read.
var ErrSpedPast = errSpedPast{}

type errSpedPast struct{}

func (errSpedPast) Error() string { return "seqlock: sped past by producer" }

// IsEmpty reports whether err indicates the cell has never been written.
func IsEmpty(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSpedPast reports whether err indicates the reader was sped past.
func IsSpedPast(err error) bool {
	_, ok := err.(errSpedPast)
	return ok
}
