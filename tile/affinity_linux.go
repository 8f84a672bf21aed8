// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package tile

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// setAffinity pins the calling OS thread to coreID, matching the
// original's `#[cfg(target_os = "linux")]` CPU-affinity split. The
// caller must already hold runtime.LockOSThread for this to be
// meaningful, since Go otherwise may migrate the goroutine to a
// different OS thread between calls.
func setAffinity(coreID int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(coreID)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return fmt.Errorf("tile: set affinity to core %d: %w", coreID, err)
	}
	return nil
}

// setPriority applies policy/priority via sched_setscheduler(2). Real-time
// policies (SCHED_FIFO, SCHED_RR) require CAP_SYS_NICE; callers running
// unprivileged should expect and tolerate EPERM.
func setPriority(policy, priority int) error {
	param := unix.SchedParam{Priority: int32(priority)}
	_, _, errno := unix.Syscall(unix.SYS_SCHED_SETSCHEDULER, 0, uintptr(policy), uintptr(unsafe.Pointer(&param)))
	if errno != 0 {
		return fmt.Errorf("tile: sched_setscheduler(policy=%d, priority=%d): %w", policy, priority, errno)
	}
	return nil
}

// sampleRusage reads RUSAGE_THREAD accounting for the calling OS thread,
// the per-thread resource snapshot folded into a [TileSample] once a
// second.
func sampleRusage() (TileRusage, bool) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return TileRusage{}, false
	}
	return TileRusage{
		UserTimeNanos:   uint64(ru.Utime.Sec)*1e9 + uint64(ru.Utime.Usec)*1e3,
		SystemTimeNanos: uint64(ru.Stime.Sec)*1e9 + uint64(ru.Stime.Usec)*1e3,
		MaxRSSKiB:       ru.Maxrss,
	}, true
}
