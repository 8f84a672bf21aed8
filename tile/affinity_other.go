// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package tile

// setAffinity is a no-op on non-Linux platforms, matching the
// original's `#[cfg(target_os = "linux")]` split: CPU pinning is a
// Linux-specific optimisation, not a correctness requirement.
func setAffinity(coreID int) error {
	return nil
}

// setPriority is a no-op outside Linux; SCHED_FIFO/SCHED_RR have no
// portable equivalent this module depends on.
func setPriority(policy, priority int) error {
	return nil
}

// sampleRusage reports no per-thread resource usage on platforms without
// RUSAGE_THREAD.
func sampleRusage() (TileRusage, bool) {
	return TileRusage{}, false
}
