// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
	"github.com/corewire-io/corewire/seqlock"
)

// ErrEmpty indicates the queue currently has nothing to consume. It is a
// control-flow signal, not a failure; delegates to [iox.ErrWouldBlock] for
// ecosystem consistency with the rest of this module family.
var ErrEmpty = seqlock.ErrEmpty

// ErrSpedPast indicates a consumer's expected slot was overwritten by a
// producer before the consumer finished reading it.
var ErrSpedPast = seqlock.ErrSpedPast

// ErrUninitialized indicates an attached shared-memory region exists but
// its header has not finished being written by its creator.
var ErrUninitialized = errors.New("ring: queue header is not initialized")

// ErrLengthNotPowerOfTwo indicates a requested or discovered capacity is
// not a power of two, which this package requires so that index masking
// (c & mask) can replace a modulo.
var ErrLengthNotPowerOfTwo = errors.New("ring: capacity must be a power of two")

// ErrTooSmall indicates a shared-memory region is smaller than its header
// claims it should be, a sign of a truncated or corrupted file.
var ErrTooSmall = errors.New("ring: backing region is smaller than the queue header declares")

// ErrNonExistingFile indicates an attach-only open was requested for a
// shared-memory path that does not exist.
var ErrNonExistingFile = errors.New("ring: shared-memory path does not exist")

// ElementSizeChangedError indicates a shared-memory region was created for
// a record type of a different size than the one the caller is attaching
// with now: almost always a sign the binary was rebuilt with an
// incompatible record type against stale shared state.
type ElementSizeChangedError struct {
	Want, Got int
}

func (e *ElementSizeChangedError) Error() string {
	return fmt.Sprintf("ring: element size changed: header declares %d, caller wants %d", e.Want, e.Got)
}

// ElementPoisonedError indicates a cell at the given index was found with
// an odd version for longer than the bounded poison-detection window,
// meaning its last writer died mid-write and left it permanently torn
// from a fresh attacher's point of view until unpoisoned.
type ElementPoisonedError struct {
	Index int
}

func (e *ElementPoisonedError) Error() string {
	return fmt.Sprintf("ring: element at index %d is poisoned", e.Index)
}

// ErrDisconnected indicates an operation was attempted against a consumer
// or producer handle whose queue has been torn down.
var ErrDisconnected = errors.New("ring: queue handle is disconnected")

// IsEmpty reports whether err indicates the queue had nothing to consume.
func IsEmpty(err error) bool { return iox.IsWouldBlock(err) }

// IsSpedPast reports whether err indicates a consumer was sped past.
func IsSpedPast(err error) bool { return seqlock.IsSpedPast(err) }
