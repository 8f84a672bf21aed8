// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"time"
	"unsafe"

	"code.hybscloud.com/spin"
	"github.com/corewire-io/corewire/seqlock"
)

// poisonScanWindow bounds how long [Queue.IsPoisoned] will watch a
// suspect cell before concluding its writer died mid-write, rather than
// just being a slow writer about to finish.
const poisonScanWindow = 10 * time.Microsecond

// Queue is a fixed-capacity, power-of-two-length bounded ring of
// [seqlock.Cell] values, produced into by one (SPMC) or many (MPMC)
// producers and consumed by any number of independent consumers.
type Queue[T any] struct {
	header *Header
	cells  []seqlock.Cell[T]
}

// New creates an in-process Queue of the given kind with capacity rounded
// up to the next power of two. Panics if capacity < 1.
func New[T any](kind Kind, capacity int) *Queue[T] {
	if capacity < 1 {
		panic("ring: capacity must be >= 1")
	}
	n := roundToPow2(capacity)
	q := &Queue[T]{header: &Header{}, cells: make([]seqlock.Cell[T], n)}
	q.header.kind = kind
	q.header.mask = uint64(n - 1)
	q.header.elemSize = uint64(unsafe.Sizeof(*new(T)))
	q.header.initialized = true
	return q
}

// Kind returns the queue's producer discipline.
func (q *Queue[T]) Kind() Kind { return q.header.Kind() }

// Cap returns the queue's capacity.
func (q *Queue[T]) Cap() int { return int(q.header.Capacity()) }

// Produce writes data into the next slot, dispatching to a
// compare-and-swap claim for MPMC or a direct write for SPMC, per the
// queue's [Kind]. It never blocks and never fails: a slow consumer simply
// observes [ErrSpedPast] on its next read of an overwritten slot.
func (q *Queue[T]) Produce(data *T) {
	c := q.header.nextCount()
	cell := &q.cells[c&q.header.mask]
	switch q.header.kind {
	case MPMC:
		cell.WriteMultiProducer(data)
	default: // SPMC
		cell.Write(data)
	}
}

// ProduceFirst is like [Queue.Produce] but, for an SPMC queue only,
// unpoisons the target cell first if it was left with an odd version by
// a previous producer that died mid-write: the discipline the sole
// producer of an SPMC queue must use for at least its first write after
// attaching to a shared-memory region it did not create, since it
// cannot assume every cell starts clean. This is an SPMC-only path: the
// unpoison write is a non-atomic read-then-store, safe only because an
// SPMC queue guarantees a single producer. An MPMC queue always claims
// its first slot through [seqlock.Cell.WriteMultiProducer]'s
// compare-and-swap, even if the observed version happens to be odd,
// since more than one producer may reach that slot concurrently and a
// non-CAS unpoison would race them.
func (q *Queue[T]) ProduceFirst(data *T) {
	c := q.header.nextCount()
	cell := &q.cells[c&q.header.mask]
	if q.header.kind != MPMC && cell.Version()&1 != 0 {
		cell.WriteUnpoison(data)
		return
	}
	switch q.header.kind {
	case MPMC:
		cell.WriteMultiProducer(data)
	default:
		cell.Write(data)
	}
}

// cellAt returns the cell index holds.
func (q *Queue[T]) cellAt(pos uint64) *seqlock.Cell[T] {
	return &q.cells[pos&q.header.mask]
}

// IsPoisoned scans the cell at index for up to [poisonScanWindow] waiting
// for an in-progress write (odd version) to complete, returning true only
// if the version is still odd once the window elapses: the signature of
// a writer that died mid-write rather than one that is merely slow.
func (q *Queue[T]) IsPoisoned(index int) bool {
	cell := &q.cells[index]
	deadline := time.Now().Add(poisonScanWindow)
	sw := spin.Wait{}
	for time.Now().Before(deadline) {
		if cell.Version()&1 == 0 {
			return false
		}
		sw.Once()
	}
	return cell.Version()&1 != 0
}

// scanForPoison walks every cell looking for one [Queue.IsPoisoned]
// reports poisoned, returning its index and true on the first hit. A
// freshly created or cleanly attached queue has every cell at an even
// version, so this only pays [poisonScanWindow]'s wait on a cell that is
// genuinely stuck odd.
func (q *Queue[T]) scanForPoison() (index int, poisoned bool) {
	for i := range q.cells {
		if q.IsPoisoned(i) {
			return i, true
		}
	}
	return 0, false
}
