// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tile

import (
	"github.com/corewire-io/corewire/ring"
	"github.com/corewire-io/corewire/timing"
)

// Adapter is the per-iteration handle [Run] passes to a [Tile]'s
// LoopBody: it carries the current loop iteration's ingestion timestamp,
// the tile's own id, and the shared [StopFlag], and is the attachment
// point every package-level Produce/Consume helper below stamps and
// drains through.
//
// Adapter itself is not parameterised by any message type: a tile
// typically produces and consumes several different record types across
// several different queues, so the type parameter lives on the
// Produce/Consume functions instead of on Adapter, matching the "concrete
// types, no dynamic dispatch on the hot path" design note.
type Adapter struct {
	id         ID
	ingestionT timing.IngestionTime
	stop       *StopFlag
	didWork    bool
}

// newAdapter returns an Adapter for tile id sharing stop.
func newAdapter(id ID, stop *StopFlag) *Adapter {
	return &Adapter{id: id, stop: stop}
}

// beginIteration stamps a fresh ingestion time and clears the
// did-work flag, called by [Run] once per loop iteration before
// LoopBody runs.
func (a *Adapter) beginIteration() {
	a.ingestionT = timing.IngestionTimeNow()
	a.didWork = false
}

// TileID returns the id this adapter's tile registered under.
func (a *Adapter) TileID() ID { return a.id }

// IngestionT returns the current loop iteration's ingestion timestamp.
func (a *Adapter) IngestionT() timing.IngestionTime { return a.ingestionT }

// SetIngestionT overrides the current iteration's ingestion timestamp.
// A handler invoked from [Consume] uses this internally so that any
// message produced in response to a consumed record inherits that
// record's ingestion time rather than the wall-clock instant LoopBody
// started at.
func (a *Adapter) SetIngestionT(t timing.IngestionTime) { a.ingestionT = t }

// DidWork reports whether this iteration produced or consumed at least
// one record, the signal [Run]'s utilisation sampler uses to attribute
// busy ticks.
func (a *Adapter) DidWork() bool { return a.didWork }

// RequestStopScope flips the shared [StopFlag], asking every tile
// sharing it to exit after their current iteration.
func (a *Adapter) RequestStopScope() { a.stop.RequestScope() }

// Produce wraps value in a [timing.InternalMessage] stamped with this
// adapter's current ingestion time and tile id, and publishes it through
// p. It is a package-level function rather than an Adapter method because
// Go methods cannot carry their own type parameter.
func Produce[T any](a *Adapter, p *ring.Producer[timing.InternalMessage[T]], value T) {
	msg := timing.NewInternalMessageWithIngestionT(value, uint16(a.id), a.ingestionT)
	p.Produce(&msg)
	a.didWork = true
}

// Consume drains every record currently available on c, calling handler
// with each record's unwrapped payload. Before each call it overwrites
// a's ingestion time with the record's own, so that any [Produce] call
// handler makes forwards the original ingestion lineage instead of
// stamping a later one. Returns the number of records handled.
func Consume[T any](a *Adapter, c *ring.Consumer[timing.InternalMessage[T]], handler func(T)) int {
	return c.Consume(func(msg timing.InternalMessage[T]) {
		a.SetIngestionT(msg.IngestionTime())
		a.didWork = true
		handler(msg.Data())
	})
}

// ConsumeFiltered is like [Consume] but only invokes handler for records
// whose unwrapped payload satisfies predicate; records that do not are
// still drained (and still count as work), matching [ring.Consumer.ConsumeFiltered].
func ConsumeFiltered[T any](a *Adapter, c *ring.Consumer[timing.InternalMessage[T]], predicate func(*T) bool, handler func(T)) int {
	return c.ConsumeFiltered(
		func(msg *timing.InternalMessage[T]) bool {
			a.didWork = true
			data := msg.Data()
			return predicate(&data)
		},
		func(msg timing.InternalMessage[T]) {
			a.SetIngestionT(msg.IngestionTime())
			a.didWork = true
			handler(msg.Data())
		},
	)
}

// ConsumeLast delivers only the most recently produced record on c, if
// any, without disturbing c's streaming position: the "coalesce to
// newest" consumer used by tiles that want the freshest value rather
// than every intermediate one.
func ConsumeLast[T any](a *Adapter, c *ring.Consumer[timing.InternalMessage[T]], handler func(T)) bool {
	return c.ConsumeLast(func(msg timing.InternalMessage[T]) {
		a.SetIngestionT(msg.IngestionTime())
		a.didWork = true
		handler(msg.Data())
	})
}

// ConsumeInternalMessage is like [Consume] but hands handler the full
// [timing.InternalMessage], for a tile that wants to forward a record's
// tracking timestamp unchanged rather than have a new one derived from
// it (see [timing.InternalMessage.WithData]).
func ConsumeInternalMessage[T any](a *Adapter, c *ring.Consumer[timing.InternalMessage[T]], handler func(timing.InternalMessage[T])) int {
	return c.Consume(func(msg timing.InternalMessage[T]) {
		a.SetIngestionT(msg.IngestionTime())
		a.didWork = true
		handler(msg)
	})
}

// ConsumeInternalMessageLast is the [ConsumeLast] counterpart of
// [ConsumeInternalMessage].
func ConsumeInternalMessageLast[T any](a *Adapter, c *ring.Consumer[timing.InternalMessage[T]], handler func(timing.InternalMessage[T])) bool {
	return c.ConsumeLast(func(msg timing.InternalMessage[T]) {
		a.SetIngestionT(msg.IngestionTime())
		a.didWork = true
		handler(msg)
	})
}
