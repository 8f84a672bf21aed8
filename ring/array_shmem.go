// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"errors"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/corewire-io/corewire/seqlock"
)

// arrayHeaderSize mirrors [headerSize]: one cache line, so the first cell
// that follows never false-shares with the header.
const arrayHeaderSize = 64

// arrayHeader is the on-disk control block for a shared [seqlock.Array].
// Its length field is the array's true element count, not rounded to any
// power of two: unlike a queue, an array is addressed, not wrapped.
//
// The original this is modeled on derives a shared array's length from
// the raw mapped pointer's size at attach time (its own author flags this
// as "I think this is slightly wrong": see DESIGN.md Open Question 2).
// This port sidesteps the ambiguity entirely: length is read from the
// header field written once at creation, never re-derived from the
// region's mapped byte count.
type arrayHeader struct {
	initialized bool
	_           [7]byte
	elemSize    uint64
	length      uint64
	_           [arrayHeaderSize - 1 - 7 - 8 - 8]byte
}

// SharedArray is a [seqlock.Array] backed by a POSIX shared-memory-mapped
// file.
type SharedArray[T any] struct {
	*seqlock.Array[T]
	header *arrayHeader
	file   *os.File
	mem    []byte
}

// Close unmaps and closes the backing file.
func (s *SharedArray[T]) Close() error {
	err := unix.Munmap(s.mem)
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// CreateOrOpenArray implements the same create-or-attach discipline as
// [CreateOrOpenQueue], for a fixed-length addressed array rather than a
// wrapping ring.
func CreateOrOpenArray[T any](path string, length int) (*SharedArray[T], error) {
	return createOrOpenArray[T](path, length, true)
}

func createOrOpenArray[T any](path string, length int, retryOnCorruption bool) (*SharedArray[T], error) {
	var elem T
	elemSize := uint64(unsafe.Sizeof(elem))
	cellSize := int(unsafe.Sizeof(seqlock.Cell[T]{}))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	switch {
	case err == nil:
		return createArray[T](f, length, elemSize, cellSize)
	case errors.Is(err, os.ErrExist):
		sa, openErr := openSharedArray[T](path, elemSize, cellSize)
		if openErr == nil {
			return sa, nil
		}
		if !retryOnCorruption || !isRecoverableCorruption(openErr) {
			return nil, openErr
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, rmErr
		}
		return createOrOpenArray[T](path, length, false)
	default:
		return nil, err
	}
}

func createArray[T any](f *os.File, length int, elemSize uint64, cellSize int) (*SharedArray[T], error) {
	size := arrayHeaderSize + length*cellSize
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, err
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}

	header, arr := overlayArray[T](mem)
	header.elemSize = elemSize
	header.length = uint64(length)
	header.initialized = true

	return &SharedArray[T]{Array: arr, header: header, file: f, mem: mem}, nil
}

func openSharedArray[T any](path string, elemSize uint64, cellSize int) (*SharedArray[T], error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNonExistingFile
		}
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() < arrayHeaderSize {
		f.Close()
		return nil, ErrTooSmall
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}

	header, arr := overlayArray[T](mem)

	var verr error
	for attempt := 0; attempt < initPollAttempts; attempt++ {
		verr = validateArray(header, elemSize, cellSize, len(mem))
		if verr == nil || !errors.Is(verr, ErrUninitialized) {
			break
		}
		time.Sleep(initPollInterval)
	}
	if verr != nil {
		unix.Munmap(mem)
		f.Close()
		return nil, verr
	}
	cellsPtr := unsafe.Add(unsafe.Pointer(&mem[0]), arrayHeaderSize)
	arr = seqlock.FromCells(unsafe.Slice((*seqlock.Cell[T])(cellsPtr), header.length))

	return &SharedArray[T]{Array: arr, header: header, file: f, mem: mem}, nil
}

func validateArray(h *arrayHeader, wantElemSize uint64, wantCellSize, regionLen int) error {
	if !h.initialized {
		return ErrUninitialized
	}
	if h.elemSize != wantElemSize {
		return &ElementSizeChangedError{Want: int(h.elemSize), Got: int(wantElemSize)}
	}
	need := arrayHeaderSize + int(h.length)*wantCellSize
	if regionLen < need {
		return ErrTooSmall
	}
	return nil
}

func overlayArray[T any](mem []byte) (*arrayHeader, *seqlock.Array[T]) {
	header := (*arrayHeader)(unsafe.Pointer(&mem[0]))
	cellsPtr := unsafe.Add(unsafe.Pointer(&mem[0]), arrayHeaderSize)
	n := (len(mem) - arrayHeaderSize) / int(unsafe.Sizeof(seqlock.Cell[T]{}))
	cells := unsafe.Slice((*seqlock.Cell[T])(cellsPtr), n)
	return header, seqlock.FromCells(cells)
}
