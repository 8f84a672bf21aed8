// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package timing

const deltaMask uint64 = 0x0000_ffff_ffff_ffff

// PublishDelta packs a 16-bit publisher (tile) id into the top 16 bits and
// a 48-bit nanosecond delta since ingestion into the bottom 48 bits, so
// that an [InternalMessage] can carry "who published this and how long
// after ingestion" in eight bytes instead of a separate id field plus a
// full timestamp.
//
// A 48-bit delta wraps after roughly 78 hours (2^48 ns), which is not a
// concern for an intra-pipeline latency measurement: any delta anywhere
// near that magnitude indicates a stalled tile, not a valid measurement.
type PublishDelta uint64

// NewPublishDelta returns a PublishDelta carrying id and a zero delta.
func NewPublishDelta(id uint16) PublishDelta {
	return PublishDelta(uint64(id) << 48)
}

// FromIngestionAndPublishT returns a copy of pd with its delta field set
// to publishT-originT, keeping pd's existing id.
func (pd PublishDelta) FromIngestionAndPublishT(originT, publishT Instant) PublishDelta {
	delta := uint64(int64(publishT)-int64(originT)) & deltaMask
	return PublishDelta(delta | uint64(pd)&^deltaMask)
}

// FromIngestion returns a copy of pd with its delta field set to the
// elapsed time between ingestionT and now.
func (pd PublishDelta) FromIngestion(ingestionT Instant) PublishDelta {
	return pd.FromIngestionAndPublishT(ingestionT, Now())
}

// TileID returns the publisher id packed into pd.
func (pd PublishDelta) TileID() uint16 {
	return uint16(pd >> 48)
}

// Delta returns the packed nanosecond delta as an [Instant] holding a
// relative (not absolute) value; callers combine it with an ingestion
// [Instant] via [Instant.Add] or convert it with [Instant.AsDuration].
func (pd PublishDelta) Delta() Instant {
	return Instant(uint64(pd) & deltaMask)
}
