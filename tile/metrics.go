// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/corewire-io/corewire/ring"
	"github.com/corewire-io/corewire/timing"
)

// sampleWindow is the number of loop iterations a [Metrics] aggregates
// before emitting a [TileSample].
const sampleWindow = 1024

// rusageInterval bounds how often [Metrics] samples per-thread resource
// usage, an expensive-enough syscall that it is not worth doing every
// iteration.
var rusageInterval = timing.DurationFromStd(time.Second)

// TileRusage is a per-OS-thread resource-usage snapshot folded into a
// [TileSample], populated only on platforms exposing RUSAGE_THREAD (see
// affinity_linux.go / affinity_other.go).
type TileRusage struct {
	UserTimeNanos   uint64
	SystemTimeNanos uint64
	MaxRSSKiB       int64
}

// TileSample is the record emitted once every [sampleWindow] iterations
// onto a dedicated SPMC queue for out-of-band inspection (an operator
// tool, a metrics reader): the out-of-scope "timekeeper" terminal UI
// this module's spec treats as an external collaborator. TileSample is
// fixed-size and trivially copyable, like every other record this
// module's queues carry.
type TileSample struct {
	TileID       ID
	WindowLoops  uint64
	TotalTicks   uint64
	BusyTicks    uint64
	MinWorkTicks uint64
	MaxWorkTicks uint64
	AvgWorkTicks uint64
	Rusage       TileRusage
	HasRusage    bool
}

// BusyRatio returns the fraction of total ticks spent doing work, in
// [0,1].
func (s TileSample) BusyRatio() float64 {
	if s.TotalTicks == 0 {
		return 0
	}
	return float64(s.BusyTicks) / float64(s.TotalTicks)
}

// PromGauges mirrors [wire.Metrics]'s pattern of a nil-safe, opt-in
// Prometheus collector set: construct with [NewPromGauges] and register
// with a [prometheus.Registerer], or pass a nil *PromGauges to disable
// instrumentation entirely.
type PromGauges struct {
	BusyRatio    prometheus.Gauge
	LoopRateHz   prometheus.Gauge
	AvgWorkNanos prometheus.Gauge
	MaxRSSKiB    prometheus.Gauge
}

// NewPromGauges builds a PromGauges for tileName under namespace
// "corewire"/subsystem "tile" and registers it with reg.
func NewPromGauges(reg prometheus.Registerer, tileName string) *PromGauges {
	labels := prometheus.Labels{"tile": tileName}
	g := &PromGauges{
		BusyRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "corewire", Subsystem: "tile", Name: "busy_ratio",
			Help: "Fraction of the last sample window spent doing work.", ConstLabels: labels,
		}),
		LoopRateHz: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "corewire", Subsystem: "tile", Name: "loop_rate_hz",
			Help: "Loop iterations per second over the last sample window.", ConstLabels: labels,
		}),
		AvgWorkNanos: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "corewire", Subsystem: "tile", Name: "avg_work_nanos",
			Help: "Average ticks spent on a work-doing iteration.", ConstLabels: labels,
		}),
		MaxRSSKiB: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "corewire", Subsystem: "tile", Name: "max_rss_kib",
			Help: "Most recent RUSAGE_THREAD maxrss reading, in KiB.", ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(g.BusyRatio, g.LoopRateHz, g.AvgWorkNanos, g.MaxRSSKiB)
	}
	return g
}

func (g *PromGauges) update(s TileSample, windowWall timing.Duration) {
	if g == nil {
		return
	}
	g.BusyRatio.Set(s.BusyRatio())
	if windowWall > 0 {
		g.LoopRateHz.Set(float64(s.WindowLoops) / (float64(windowWall) / 1e9))
	}
	g.AvgWorkNanos.Set(float64(s.AvgWorkTicks))
	if s.HasRusage {
		g.MaxRSSKiB.Set(float64(s.Rusage.MaxRSSKiB))
	}
}

// Metrics accumulates per-iteration utilisation over a rolling window of
// [sampleWindow] loop iterations, emitting a [TileSample] onto an SPMC
// queue (and, optionally, a set of Prometheus gauges) each time the
// window fills.
type Metrics struct {
	id       ID
	producer *ring.Producer[TileSample]
	prom     *PromGauges
	rusage   timing.Repeater

	loops     uint64
	totalT    uint64
	busyT     uint64
	minWork   uint64
	maxWork   uint64
	sumWork   uint64
	workCount uint64
	windowT0  timing.Instant
	lastRU    TileRusage
	hasRU     bool
}

// NewMetrics returns a Metrics for tile id, publishing samples through
// producer (which may be nil to disable the SPMC feed) and updating prom
// (which may be nil to disable Prometheus).
func NewMetrics(id ID, producer *ring.Producer[TileSample], prom *PromGauges) *Metrics {
	return &Metrics{
		id:       id,
		producer: producer,
		prom:     prom,
		rusage:   timing.NewRepeater(rusageInterval),
		windowT0: timing.Now(),
	}
}

// Record folds one iteration's elapsed ticks into the current window,
// flushing and resetting the window once [sampleWindow] iterations have
// accumulated.
func (m *Metrics) Record(elapsed timing.Duration, didWork bool) {
	e := uint64(elapsed)
	m.totalT += e
	if didWork {
		m.busyT += e
		m.sumWork += e
		m.workCount++
		if m.workCount == 1 || e < m.minWork {
			m.minWork = e
		}
		if e > m.maxWork {
			m.maxWork = e
		}
	}
	m.loops++
	m.rusage.Maybe(func(timing.Duration) {
		if ru, ok := sampleRusage(); ok {
			m.lastRU, m.hasRU = ru, true
		}
	})
	if m.loops >= sampleWindow {
		m.flush()
	}
}

func (m *Metrics) flush() {
	var avg uint64
	if m.workCount > 0 {
		avg = m.sumWork / m.workCount
	}
	sample := TileSample{
		TileID:       m.id,
		WindowLoops:  m.loops,
		TotalTicks:   m.totalT,
		BusyTicks:    m.busyT,
		MinWorkTicks: m.minWork,
		MaxWorkTicks: m.maxWork,
		AvgWorkTicks: avg,
		Rusage:       m.lastRU,
		HasRusage:    m.hasRU,
	}
	windowWall := timing.Now().Sub(m.windowT0)
	if m.producer != nil {
		m.producer.Produce(&sample)
	}
	m.prom.update(sample, windowWall)

	m.loops, m.totalT, m.busyT = 0, 0, 0
	m.minWork, m.maxWork, m.sumWork, m.workCount = 0, 0, 0, 0
	m.windowT0 = timing.Now()
}
