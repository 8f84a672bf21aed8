// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import "code.hybscloud.com/atomix"

// Kind selects the queue's producer-side concurrency discipline. Every
// Kind shares the same consumer-side discipline: any number of consumers,
// each tracking its own position independently.
type Kind uint8

const (
	// MPMC allows any number of concurrent producers. Each produce claims
	// its target cell with a compare-and-swap before writing it.
	MPMC Kind = 1
	// SPMC allows exactly one producer. Produces write directly, without
	// a claim step, which is cheaper and is correct only because the
	// caller guarantees no concurrent producer exists.
	SPMC Kind = 2
)

func (k Kind) String() string {
	switch k {
	case MPMC:
		return "MPMC"
	case SPMC:
		return "SPMC"
	default:
		return "unknown"
	}
}

// headerSize is the on-disk/in-memory size, in bytes, of [Header] once its
// counter and padding are accounted for: 64 bytes, one cache line, so
// that the header never false-shares with the first cell that follows it
// in a shared-memory region.
const headerSize = 64

// Header is the fixed-size control block at the front of every ring
// queue, whether heap-allocated or shared-memory-backed. Its layout
// mirrors the external byte format this module publishes for
// cross-process attachment:
//
//	offset 0:  kind            (1 byte)
//	offset 1:  initialized     (1 byte)
//	offset 2..7: reserved
//	offset 8:  element size    (8 bytes, little-endian)
//	offset 16: mask            (8 bytes, little-endian)
//	offset 24: producer count  (8 bytes, little-endian, atomic)
//	offset 32..63: reserved / padding to 64 bytes
type Header struct {
	kind        Kind
	initialized bool
	elemSize    uint64
	mask        uint64
	count       atomix.Uint64
	_           [headerSize - 1 - 1 - 6 - 8 - 8 - 8]byte
}

// Kind returns the queue's producer discipline.
func (h *Header) Kind() Kind { return h.kind }

// Initialized reports whether the header has finished being written by
// its creator. A shared-memory attacher must poll this before trusting
// the rest of the header.
func (h *Header) Initialized() bool { return h.initialized }

// ElemSize returns the declared per-record size in bytes.
func (h *Header) ElemSize() uint64 { return h.elemSize }

// Mask returns capacity-1; every cell index is computed as count & mask.
func (h *Header) Mask() uint64 { return h.mask }

// Capacity returns the number of addressable cells.
func (h *Header) Capacity() uint64 { return h.mask + 1 }

// nextCount advances and returns the producer counter, dispatching on
// queue kind: MPMC uses an atomic fetch-add since multiple producers race
// on it; SPMC uses a plain load-then-store since the caller guarantees a
// single producer and a fetch-add's extra interlock would be wasted cost.
func (h *Header) nextCount() uint64 {
	switch h.kind {
	case MPMC:
		return h.count.AddAcqRel(1) - 1
	default: // SPMC
		c := h.count.LoadRelaxed()
		h.count.StoreRelaxed(c + 1)
		return c
	}
}

// version returns the lap-stamped version a cell written by count c
// should carry: 2 for the first lap (0 means empty), then +2 per lap,
// matching [seqlock.Cell]'s version encoding (odd = write in progress,
// even >= 2 = stable).
func version(count, capacity uint64) uint64 {
	return (count/capacity)<<1 + 2
}

// validate checks a header discovered in a shared-memory region against
// what the caller expects for its record type, returning the taxonomy of
// errors external callers are expected to handle per [ErrUninitialized],
// [ErrLengthNotPowerOfTwo], [ElementSizeChangedError], and [ErrTooSmall].
func (h *Header) validate(wantElemSize uint64, wantCellSize int, regionLen int) error {
	if !h.initialized {
		return ErrUninitialized
	}
	if (h.mask+1)&h.mask != 0 {
		return ErrLengthNotPowerOfTwo
	}
	if h.elemSize != wantElemSize {
		return &ElementSizeChangedError{Want: int(h.elemSize), Got: int(wantElemSize)}
	}
	need := headerSize + int(h.mask+1)*wantCellSize
	if regionLen < need {
		return ErrTooSmall
	}
	return nil
}
