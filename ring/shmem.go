// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"errors"
	"os"
	"time"
	"unsafe"

	"code.hybscloud.com/spin"
	"golang.org/x/sys/unix"

	"github.com/corewire-io/corewire/seqlock"
)

// initPollInterval and initPollAttempts bound how long an attacher waits
// for a just-created region's header to finish being written before
// giving up with [ErrUninitialized].
const (
	initPollInterval = time.Millisecond
	initPollAttempts = 10
)

// SharedQueue is a ring [Queue] backed by a POSIX shared-memory-mapped
// file, openable by unrelated processes that agree on its path. Unlike an
// in-process [New]'d queue, a SharedQueue owns an OS-level mapping that
// must be released with [SharedQueue.Close].
type SharedQueue[T any] struct {
	*Queue[T]
	file *os.File
	mem  []byte
}

// Close unmaps and closes the backing file. It does not remove the file:
// other attached processes may still be using it.
func (s *SharedQueue[T]) Close() error {
	err := unix.Munmap(s.mem)
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// CreateOrOpenQueue implements the create-or-attach discipline every
// shared-memory region in this module follows: attempt to create path
// exclusively; if it already exists, open and validate it instead; if
// validation finds it corrupt, remove it and retry the create, exactly
// once, on the theory that a corrupt region is abandoned state from a
// crashed process rather than a live peer's in-progress create.
func CreateOrOpenQueue[T any](path string, kind Kind, capacity int) (*SharedQueue[T], error) {
	return createOrOpenQueue[T](path, kind, capacity, true)
}

func createOrOpenQueue[T any](path string, kind Kind, capacity int, retryOnCorruption bool) (*SharedQueue[T], error) {
	var elem T
	elemSize := uint64(unsafe.Sizeof(elem))
	cellSize := int(unsafe.Sizeof(seqlock.Cell[T]{}))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	switch {
	case err == nil:
		return createQueue[T](f, kind, capacity, elemSize, cellSize)
	case errors.Is(err, os.ErrExist):
		sq, openErr := openSharedQueue[T](path, elemSize, cellSize)
		if openErr == nil {
			return sq, nil
		}
		if !retryOnCorruption || !isRecoverableCorruption(openErr) {
			return nil, openErr
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, rmErr
		}
		return createOrOpenQueue[T](path, kind, capacity, false)
	default:
		return nil, err
	}
}

// isRecoverableCorruption reports whether err is the kind of validation
// failure that warrants deleting and recreating the region rather than
// surfacing to the caller: a header that never finished initializing, or
// one whose declared size does not match the mapped file.
func isRecoverableCorruption(err error) bool {
	return errors.Is(err, ErrUninitialized) || errors.Is(err, ErrTooSmall)
}

func createQueue[T any](f *os.File, kind Kind, capacity int, elemSize uint64, cellSize int) (*SharedQueue[T], error) {
	n := roundToPow2(capacity)
	size := headerSize + n*cellSize
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, err
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}

	q := overlayQueue[T](mem)
	q.header.kind = kind
	q.header.elemSize = elemSize
	q.header.mask = uint64(n - 1)
	q.header.count.StoreRelaxed(0)
	// initialized is set last, with a release-ordered store implied by the
	// write barrier of a subsequent mmap'd read on another process: we do
	// not have a stronger cross-process fence available here, matching the
	// original's own best-effort "store init flag last" discipline.
	q.header.initialized = true

	return &SharedQueue[T]{Queue: q, file: f, mem: mem}, nil
}

func openSharedQueue[T any](path string, elemSize uint64, cellSize int) (*SharedQueue[T], error) {
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
	if fi.Size() < headerSize {
		f.Close()
		return nil, ErrTooSmall
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}

	q := overlayQueue[T](mem)

	sw := spin.Wait{}
	var verr error
	for attempt := 0; attempt < initPollAttempts; attempt++ {
		verr = q.header.validate(elemSize, cellSize, len(mem))
		if verr == nil || !errors.Is(verr, ErrUninitialized) {
			break
		}
		time.Sleep(initPollInterval)
		sw.Once()
	}
	if verr != nil {
		unix.Munmap(mem)
		f.Close()
		return nil, verr
	}

	if i, poisoned := q.scanForPoison(); poisoned {
		unix.Munmap(mem)
		f.Close()
		return nil, &ElementPoisonedError{Index: i}
	}

	return &SharedQueue[T]{Queue: q, file: f, mem: mem}, nil
}

// overlayQueue reinterprets a memory-mapped region as a [Queue]'s header
// followed by its cell array, the same raw-pointer-casting idiom used
// elsewhere in the pack for mapping a kernel-owned ring buffer onto a Go
// struct (see DESIGN.md).
func overlayQueue[T any](mem []byte) *Queue[T] {
	header := (*Header)(unsafe.Pointer(&mem[0]))
	cellsPtr := unsafe.Add(unsafe.Pointer(&mem[0]), headerSize)
	n := (len(mem) - headerSize) / int(unsafe.Sizeof(seqlock.Cell[T]{}))
	cells := unsafe.Slice((*seqlock.Cell[T])(cellsPtr), n)
	return &Queue[T]{header: header, cells: cells}
}
