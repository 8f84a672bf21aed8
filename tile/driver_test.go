// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tile

import (
	"testing"
	"time"

	"github.com/corewire-io/corewire/ring"
	"github.com/corewire-io/corewire/timing"
)

// producerTile writes a single value, once, then idles until the
// consumer tile requests shutdown.
type producerTile struct {
	q       *ring.Queue[timing.InternalMessage[int]]
	value   int
	wrote   bool
}

func (p *producerTile) Name() string           { return "producer" }
func (p *producerTile) TryInit(a *Adapter) bool { return true }
func (p *producerTile) Teardown(a *Adapter)     {}
func (p *producerTile) LoopBody(a *Adapter) {
	if p.wrote {
		return
	}
	prod := ring.NewProducer(p.q)
	Produce(a, prod, p.value)
	p.wrote = true
}

// consumerTile reads exactly one value and records it.
type consumerTile struct {
	c      *ring.Consumer[timing.InternalMessage[int]]
	got    int
	gotAny bool
}

func (c *consumerTile) Name() string           { return "consumer" }
func (c *consumerTile) TryInit(a *Adapter) bool { return true }
func (c *consumerTile) Teardown(a *Adapter)     {}
func (c *consumerTile) LoopBody(a *Adapter) {
	Consume(a, c.c, func(v int) {
		c.got = v
		c.gotAny = true
	})
	if c.gotAny {
		a.RequestStopScope()
	}
}

// TestEndToEndTile runs a producer tile and a consumer tile sharing a
// queue end to end: the producer writes a single value, the consumer
// observes it and requests shutdown, and both tiles tear down with the
// value intact.
func TestEndToEndTile(t *testing.T) {
	q := ring.New[timing.InternalMessage[int]](ring.SPMC, 4)
	prodTile := &producerTile{q: q, value: 42}
	consTile := &consumerTile{c: ring.NewConsumer(q, nil)}

	stop := NewStopFlag()
	done := make(chan struct{}, 2)

	go func() { Run(0, prodTile, stop, Config{}); done <- struct{}{} }()
	go func() { Run(1, consTile, stop, Config{}); done <- struct{}{} }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer tile did not finish")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer tile did not finish")
	}

	if !consTile.gotAny || consTile.got != 42 {
		t.Fatalf("consumer got (%d, %v), want (42, true)", consTile.got, consTile.gotAny)
	}
}

type onceTile struct {
	inits int
	ran   bool
}

func (o *onceTile) Name() string { return "once" }
func (o *onceTile) TryInit(a *Adapter) bool {
	o.inits++
	return o.inits >= 3
}
func (o *onceTile) LoopBody(a *Adapter) {
	o.ran = true
	a.RequestStopScope()
}
func (o *onceTile) Teardown(a *Adapter) {}

func TestRunRetriesTryInitUntilSuccess(t *testing.T) {
	tl := &onceTile{}
	Run(0, tl, NewStopFlag(), Config{})
	if tl.inits != 3 {
		t.Fatalf("inits = %d, want 3", tl.inits)
	}
	if !tl.ran {
		t.Fatal("LoopBody never ran")
	}
}

type neverInitTile struct{}

func (neverInitTile) Name() string            { return "never" }
func (neverInitTile) TryInit(a *Adapter) bool  { return false }
func (neverInitTile) LoopBody(a *Adapter)      {}
func (neverInitTile) Teardown(a *Adapter)      {}

func TestRunStopsDuringInitWhenFlagAlreadySet(t *testing.T) {
	stop := NewStopFlag()
	stop.RequestScope()
	done := make(chan struct{})
	go func() { Run(0, neverInitTile{}, stop, Config{}); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit promptly when stop was already requested")
	}
}

func TestStopFlagRequestBySignalIsSticky(t *testing.T) {
	f := NewStopFlag()
	f.RequestBySignal(15)
	f.RequestBySignal(2)
	if f.Signal() != 15 {
		t.Fatalf("Signal() = %d, want 15 (first writer wins)", f.Signal())
	}
}

func TestMetricsFlushesAfterWindow(t *testing.T) {
	q := ring.New[TileSample](ring.SPMC, 4)
	p := ring.NewProducer(q)
	m := NewMetrics(7, p, nil)
	c := ring.NewConsumerBare(q)

	for i := 0; i < sampleWindow; i++ {
		m.Record(timing.Duration(1000), i%2 == 0)
	}

	var s TileSample
	if err := c.TryConsume(&s); err != nil {
		t.Fatalf("TryConsume: %v", err)
	}
	if s.TileID != 7 {
		t.Fatalf("TileID = %d, want 7", s.TileID)
	}
	if s.WindowLoops != sampleWindow {
		t.Fatalf("WindowLoops = %d, want %d", s.WindowLoops, sampleWindow)
	}
	if s.BusyTicks == 0 || s.BusyTicks >= s.TotalTicks {
		t.Fatalf("BusyTicks = %d, TotalTicks = %d: expected partial busy ratio", s.BusyTicks, s.TotalTicks)
	}
}
