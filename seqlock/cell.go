// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package seqlock

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Cell is a single versioned slot holding one value of type T.
//
// The version follows the classic seqlock encoding: 0 means never written,
// an odd value means a write is in progress (readers must retry), and an
// even value >= 2 is the lap-stamped version of the last completed write.
// Cell ends with [padShort] after its payload, so the version words of
// adjacent cells in a slice are at least 64 bytes apart. The cell's total
// size is 64 plus the size of T; it is not rounded to a multiple of 64,
// and a Cell is not aligned to a cache-line boundary.
type Cell[T any] struct {
	version atomix.Uint64
	data    T
	_       padShort
}

// pad is cache line padding to prevent false sharing between adjacent
// fields of a larger structure that embeds a [Cell].
type pad [64]byte

// padShort is the 56 bytes that, with the 8-byte version field, make up
// one cache line's worth of spacing in every [Cell], on top of its payload.
type padShort [64 - 8]byte

// Version returns the cell's current version with relaxed ordering,
// useful for diagnostics and for seeding an expected_version comparison.
func (c *Cell[T]) Version() uint64 {
	return c.version.LoadRelaxed()
}

// WasEverWritten reports whether the cell has completed at least one write.
func (c *Cell[T]) WasEverWritten() bool {
	return c.version.LoadAcquire() > 1
}

// Read copies the cell's current value into result. It returns [ErrEmpty]
// if the cell has never been written, and otherwise spins until it
// observes a torn-free, non-poisoned snapshot.
func (c *Cell[T]) Read(result *T) error {
	sw := spin.Wait{}
	for {
		v1 := c.version.LoadAcquire()
		if v1 < 2 {
			return ErrEmpty
		}
		*result = c.data
		v2 := c.version.LoadAcquire()
		if v1 == v2 && v1&1 == 0 {
			return nil
		}
		sw.Once()
	}
}

// ReadCopy is like [Cell.Read] but returns the value and the version it
// was read at, which a consumer can use as the next expected_version.
func (c *Cell[T]) ReadCopy() (T, uint64, error) {
	sw := spin.Wait{}
	for {
		v1 := c.version.LoadAcquire()
		if v1 < 2 {
			var zero T
			return zero, 0, ErrEmpty
		}
		if v1&1 != 0 {
			sw.Once()
			continue
		}
		result := c.data
		v2 := c.version.LoadAcquire()
		if v1 == v2 {
			return result, v2, nil
		}
		sw.Once()
	}
}

// ReadWithVersion copies the cell's value into result only if the cell's
// version is at least expectedVersion. It returns [ErrEmpty] if the cell
// has not yet reached that version, or [ErrSpedPast] if the producer moved
// on to a version other than expectedVersion while the read was in flight
// (meaning the reader's lap was overwritten, not merely delayed).
func (c *Cell[T]) ReadWithVersion(result *T, expectedVersion uint64) error {
	v1 := c.version.LoadAcquire()
	if v1 < expectedVersion {
		return ErrEmpty
	}
	*result = c.data
	v2 := c.version.LoadAcquire()
	if v2 == expectedVersion {
		return nil
	}
	return ErrSpedPast
}

// ReadCopyIfUpdated returns [ErrEmpty] if the cell's version is below
// expectedVersion, and otherwise behaves as [Cell.ReadCopy]. Unlike
// [Cell.ReadWithVersion] it never reports [ErrSpedPast].
func (c *Cell[T]) ReadCopyIfUpdated(expectedVersion uint64) (T, uint64, error) {
	if c.version.LoadAcquire() < expectedVersion {
		var zero T
		return zero, 0, ErrEmpty
	}
	return c.ReadCopy()
}

// ViewUnsafe returns a pointer directly at the cell's payload without any
// version check beyond "has this cell ever been written". Callers that use
// this bypass every torn-read and sped-past guarantee this package
// otherwise provides; it exists for zero-copy producer-side access to a
// cell the caller already knows it owns exclusively.
func (c *Cell[T]) ViewUnsafe() (*T, error) {
	if !c.WasEverWritten() {
		return nil, ErrEmpty
	}
	return &c.data, nil
}

// Write stores data unconditionally: single-producer discipline only. The
// version is bumped to odd (readers spin), the payload is copied, then the
// version is bumped to the next even value.
func (c *Cell[T]) Write(data *T) {
	v := c.version.AddAcqRel(1) - 1
	c.data = *data
	c.version.StoreRelease(v + 2)
}

// WriteUnpoison is like [Cell.Write] but tolerant of a cell whose version
// was left odd by a writer that never completed (a poisoned cell, e.g.
// after a crashed producer in a shared-memory region). If the observed
// version v is odd, it is kept as the in-progress marker and the write
// completes the cell at v+1; an even v is bumped to v+1 and completed at
// v+2 as in [Cell.Write]. Either way the cell ends at an even version,
// recovering it instead of leaving every future reader spinning forever.
func (c *Cell[T]) WriteUnpoison(data *T) {
	v := c.version.LoadRelaxed()
	recovered := v + (v-1)&1
	c.version.StoreRelease(recovered)
	c.data = *data
	c.version.StoreRelaxed(recovered + 1)
}

// WriteMultiProducer stores data when more than one goroutine may call
// Write concurrently on the same cell. Producers race to claim the cell by
// compare-and-swapping the version from an even value to that value+1
// (odd, claimed); the loser retries against whatever even version it next
// observes. There is no dedicated fetch-or primitive in [atomix], so the
// claim is realized as a CAS-retry loop, spun with [spin.Wait], rather than
// the single fetch_or instruction the algorithm is described with.
func (c *Cell[T]) WriteMultiProducer(data *T) {
	sw := spin.Wait{}
	for {
		v := c.version.LoadAcquire()
		if v&1 != 0 {
			sw.Once()
			continue
		}
		if c.version.CompareAndSwapAcqRel(v, v+1) {
			c.data = *data
			c.version.StoreRelease(v + 2)
			return
		}
		sw.Once()
	}
}

// WriteAtVersion writes data only if the cell's current version equals
// currentVersion, reporting whether the write happened. This lets a
// producer install a value at a specific lap boundary and detect whether
// it lost a race to do so.
func (c *Cell[T]) WriteAtVersion(data *T, currentVersion uint64) bool {
	if !c.version.CompareAndSwapAcqRel(currentVersion, currentVersion+1) {
		return false
	}
	c.data = *data
	c.version.StoreRelease(currentVersion + 2)
	return true
}

// Reset clears the cell back to its never-written state.
func (c *Cell[T]) Reset() {
	c.version.StoreRelease(0)
}
