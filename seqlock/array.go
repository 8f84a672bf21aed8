// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package seqlock

// Array is a fixed-length, indexable sequence of [Cell] values. Unlike
// [ring.Queue], an Array's length is not rounded to a power of two: it is
// meant for addressed lookups (a tile-id-indexed registry, a per-shard
// scoreboard), not for a producer/consumer ring.
type Array[T any] struct {
	cells []Cell[T]
}

// NewArray allocates an Array with the given length. Every cell starts
// unwritten.
func NewArray[T any](length int) *Array[T] {
	if length <= 0 {
		panic("seqlock: array length must be > 0")
	}
	return &Array[T]{cells: make([]Cell[T], length)}
}

// FromCells wraps a pre-existing cell slice (typically one overlaid onto
// a memory-mapped shared-memory region by a caller outside this package)
// as an Array, without allocating or zeroing it.
func FromCells[T any](cells []Cell[T]) *Array[T] {
	return &Array[T]{cells: cells}
}

// Len returns the number of addressable cells.
func (a *Array[T]) Len() int {
	return len(a.cells)
}

// At returns the cell at index i, panicking if i is out of range, matching
// ordinary Go slice-indexing semantics rather than returning an error for
// a programmer mistake.
func (a *Array[T]) At(i int) *Cell[T] {
	return &a.cells[i]
}

// Write stores data at index i (single-producer discipline for that index).
func (a *Array[T]) Write(i int, data *T) {
	a.cells[i].Write(data)
}

// WriteMultiProducer stores data at index i when more than one goroutine
// may write that index concurrently.
func (a *Array[T]) WriteMultiProducer(i int, data *T) {
	a.cells[i].WriteMultiProducer(data)
}

// Read copies the value at index i into result.
func (a *Array[T]) Read(i int, result *T) error {
	return a.cells[i].Read(result)
}

// ReadCopy returns the value at index i along with its version.
func (a *Array[T]) ReadCopy(i int) (T, uint64, error) {
	return a.cells[i].ReadCopy()
}

// ReadCopyIfUpdated returns the value at index i only if its version is
// at least expectedVersion.
func (a *Array[T]) ReadCopyIfUpdated(i int, expectedVersion uint64) (T, uint64, error) {
	return a.cells[i].ReadCopyIfUpdated(expectedVersion)
}

// Reset clears every cell back to its never-written state.
func (a *Array[T]) Reset() {
	for i := range a.cells {
		a.cells[i].Reset()
	}
}

// Version returns the version of the cell at index i.
func (a *Array[T]) Version(i int) uint64 {
	return a.cells[i].Version()
}

// All returns a lazily-evaluated sequence of (index, value) pairs for
// every cell that has been written at least once at the moment it is
// visited. This is not a snapshot: a cell written after iteration passes
// it, or written again while iteration is in flight elsewhere, is observed
// with whatever value is current at the instant it is visited, not a
// snapshot taken when iteration began.
func (a *Array[T]) All() func(yield func(int, T) bool) {
	return func(yield func(int, T) bool) {
		for i := range a.cells {
			v, _, err := a.cells[i].ReadCopy()
			if err != nil {
				continue
			}
			if !yield(i, v) {
				return
			}
		}
	}
}
