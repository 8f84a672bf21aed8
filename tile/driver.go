// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tile

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/corewire-io/corewire/timing"
)

// Tile is the lifecycle contract every long-lived execution unit this
// module drives implements: [TryInit] prepares it (retried until it
// succeeds or shutdown is requested), [LoopBody] runs once per
// iteration, and [Teardown] runs exactly once on exit, win or lose.
type Tile interface {
	// Name is a short, human-readable identifier used for registration
	// in a [TileInfo] registry and in log lines.
	Name() string
	// TryInit attempts one-shot setup (opening queues, dialing a
	// connector) and reports whether it succeeded. Run retries it until
	// it returns true or the stop flag fires.
	TryInit(a *Adapter) bool
	// LoopBody runs once per iteration. A tile that wants to stop calls
	// [Adapter.RequestStopScope].
	LoopBody(a *Adapter)
	// Teardown runs exactly once, after the loop exits for any reason.
	Teardown(a *Adapter)
}

// Config configures one [Run] invocation.
type Config struct {
	// CoreID, if non-nil, pins the tile's OS thread to this CPU core.
	CoreID *int
	// SchedPolicy and SchedPriority, if SchedPolicy is non-zero, are
	// applied via sched_setscheduler(2) (Linux only; see
	// affinity_linux.go). Typical values are unix.SCHED_FIFO or
	// unix.SCHED_RR with a priority in [1,99].
	SchedPolicy   int
	SchedPriority int
	// MinLoopDuration, if non-zero, paces LoopBody to run no more
	// often than once per this duration, trading latency for a bounded
	// CPU budget.
	MinLoopDuration timing.Duration
	// Metrics, if non-nil, receives one Record call per iteration.
	Metrics *Metrics
	// Logger receives init-retry and teardown diagnostics. A nil Logger
	// disables logging.
	Logger *zap.Logger
}

// Run pins the calling OS thread per cfg (if requested), retries
// tile.TryInit until it succeeds or stop fires, then repeats
// tile.LoopBody, stamping a fresh ingestion timestamp and pacing to
// cfg.MinLoopDuration each iteration, and recording utilisation via
// cfg.Metrics, until stop fires, finally invoking tile.Teardown exactly
// once. Run is meant to be the entire body of a goroutine started with
// `go tile.Run(...)`: it blocks until shutdown.
func Run(id ID, t Tile, stop *StopFlag, cfg Config) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("tile", t.Name()), zap.Uint16("tile_id", uint16(id)))

	if cfg.CoreID != nil {
		if err := setAffinity(*cfg.CoreID); err != nil {
			logger.Warn("tile: failed to set CPU affinity", zap.Error(err))
		}
	}
	if cfg.SchedPolicy != 0 {
		if err := setPriority(cfg.SchedPolicy, cfg.SchedPriority); err != nil {
			logger.Warn("tile: failed to set scheduling priority", zap.Error(err))
		}
	}

	a := newAdapter(id, stop)
	defer func() {
		if r := recover(); r != nil {
			stop.RequestScope()
			t.Teardown(a)
			panic(r)
		}
	}()

	for !t.TryInit(a) {
		if stop.Requested() {
			t.Teardown(a)
			return
		}
	}

	for !stop.Requested() {
		iterStart := timing.Now()
		a.beginIteration()
		t.LoopBody(a)

		if cfg.MinLoopDuration > 0 {
			pace(iterStart, cfg.MinLoopDuration)
		}
		if cfg.Metrics != nil {
			cfg.Metrics.Record(timing.Now().Sub(iterStart), a.DidWork())
		}
	}

	t.Teardown(a)
	logger.Debug("tile: teardown complete")
}

// pace blocks until at least min has elapsed since start, the "vsync"
// loop pacer: a tile whose body returns early is held back rather than
// spinning the CPU at an unbounded rate.
func pace(start timing.Instant, min timing.Duration) {
	for start.Elapsed() < min {
		runtime.Gosched()
	}
}
