// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package timing

// untrackedTileID marks a TrackingTimestamp created without a real tile,
// kept only for messages produced outside the tile lifecycle.
const untrackedTileID = 0xffff

// TrackingTimestamp records who published an [InternalMessage] and how
// long after ingestion, so that end-to-end latency can be measured without
// carrying a second full timestamp alongside the payload.
type TrackingTimestamp struct {
	IngestionT   IngestionTime
	PublishDelta PublishDelta
}

// NewTrackingTimestamp captures the current ingestion time and stamps id
// as the publishing tile.
func NewTrackingTimestamp(id uint16) TrackingTimestamp {
	return TrackingTimestamp{IngestionT: IngestionTimeNow(), PublishDelta: NewPublishDelta(id)}
}

// NewTrackingTimestampWithoutTile is for messages produced outside of any
// tile's loop body; it exists purely so such call sites do not need to
// fabricate a tile id.
func NewTrackingTimestampWithoutTile() TrackingTimestamp {
	return TrackingTimestamp{IngestionT: IngestionTimeNow(), PublishDelta: NewPublishDelta(untrackedTileID)}
}

// WithIngestionT returns a copy of t re-anchored to ingestionT, with
// publishDelta recomputed against the new ingestion instant.
func (t TrackingTimestamp) WithIngestionT(ingestionT IngestionTime) TrackingTimestamp {
	return TrackingTimestamp{
		IngestionT:   ingestionT,
		PublishDelta: t.PublishDelta.FromIngestion(ingestionT.Internal()),
	}
}

// WithNewPublishDelta returns a copy of t with its delta recomputed
// against the current instant, used when forwarding a message through
// another tile that wants to stamp its own publish time without losing
// the original ingestion time.
func (t TrackingTimestamp) WithNewPublishDelta() TrackingTimestamp {
	return TrackingTimestamp{
		IngestionT:   t.IngestionT,
		PublishDelta: t.PublishDelta.FromIngestion(t.IngestionT.Internal()),
	}
}

// PublishT returns the wall-clock time the message was published.
func (t TrackingTimestamp) PublishT() Nanos {
	return t.IngestionT.Real().Add(t.PublishDelta.Delta().AsDuration().Std())
}

// PublishTInternal returns the monotonic time the message was published.
func (t TrackingTimestamp) PublishTInternal() Instant {
	return t.IngestionT.Internal().Add(t.PublishDelta.Delta().AsDuration())
}

// TileID returns the id of the tile that published the message.
func (t TrackingTimestamp) TileID() uint16 {
	return t.PublishDelta.TileID()
}

// LatencyUntilPublish returns the elapsed time from ingestion to publish.
func (t TrackingTimestamp) LatencyUntilPublish() Duration {
	return t.PublishDelta.Delta().AsDuration()
}
