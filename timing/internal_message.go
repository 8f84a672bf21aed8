// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package timing

// InternalMessage wraps a payload of type T with the [TrackingTimestamp]
// that a tile's loop driver attaches on produce and every downstream tile
// can read to compute end-to-end latency. Every queue carrying
// InternalMessage-wrapped payloads is still a plain fixed-size-record
// seqlock ring: InternalMessage is just the record type.
type InternalMessage[T any] struct {
	data T
	tt   TrackingTimestamp
}

// NewInternalMessage wraps data, stamping it as published by tile id.
func NewInternalMessage[T any](data T, id uint16) InternalMessage[T] {
	return InternalMessage[T]{data: data, tt: NewTrackingTimestamp(id)}
}

// NewInternalMessageWithIngestionT wraps data as published by tile id,
// anchoring the tracking timestamp to ingestionT instead of the current
// instant: what a tile adapter uses so that every message produced
// during one loop iteration carries that iteration's ingestion time
// rather than a slightly later one sampled per-call.
func NewInternalMessageWithIngestionT[T any](data T, id uint16, ingestionT IngestionTime) InternalMessage[T] {
	return InternalMessage[T]{data: data, tt: NewTrackingTimestamp(id).WithIngestionT(ingestionT)}
}

// WithData returns a copy of m with data replaced, keeping m's tracking
// timestamp (used when a tile forwards a message but transforms its
// payload without wanting to lose the original ingestion lineage).
func (m InternalMessage[T]) WithData(data T) InternalMessage[T] {
	return InternalMessage[T]{data: data, tt: m.tt}
}

// Data returns the wrapped payload.
func (m InternalMessage[T]) Data() T {
	return m.data
}

// Map transforms m's payload with f, returning a new InternalMessage whose
// tracking timestamp is recomputed as a fresh publish (see
// [TrackingTimestamp.WithNewPublishDelta]).
func Map[T, U any](m InternalMessage[T], f func(T) U) InternalMessage[U] {
	return InternalMessage[U]{data: f(m.data), tt: m.tt.WithNewPublishDelta()}
}

// MapRef transforms m's payload with f without touching its tracking
// timestamp, for in-place-style edits that should not count as a new
// publish event.
func MapRef[T, U any](m InternalMessage[T], f func(T) U) InternalMessage[U] {
	return InternalMessage[U]{data: f(m.data), tt: m.tt}
}

// Unpack returns both the payload and the tracking timestamp.
func (m InternalMessage[T]) Unpack() (T, TrackingTimestamp) {
	return m.data, m.tt
}

// TrackingTimestamp returns m's tracking timestamp.
func (m InternalMessage[T]) TrackingTimestamp() TrackingTimestamp {
	return m.tt
}

// IngestionTime returns the ingestion time recorded in m's tracking
// timestamp.
func (m InternalMessage[T]) IngestionTime() IngestionTime {
	return m.tt.IngestionT
}

// PublishT returns the wall-clock publish time recorded in m.
func (m InternalMessage[T]) PublishT() Nanos {
	return m.tt.PublishT()
}

// TileID returns the id of the tile that published m.
func (m InternalMessage[T]) TileID() uint16 {
	return m.tt.TileID()
}

// LatencyE2E returns the elapsed time from m's ingestion to now.
func (m InternalMessage[T]) LatencyE2E() Duration {
	return Now().Sub(m.tt.IngestionT.Internal())
}
