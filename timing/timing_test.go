// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package timing

import (
	"testing"
	"time"
)

func TestPublishDeltaRoundTrip(t *testing.T) {
	pd := NewPublishDelta(7)
	origin := Now()
	publish := origin.Add(Duration(250))
	pd = pd.FromIngestionAndPublishT(origin, publish)

	if pd.TileID() != 7 {
		t.Fatalf("TileID() = %d, want 7", pd.TileID())
	}
	if pd.Delta() != 250 {
		t.Fatalf("Delta() = %d, want 250", pd.Delta())
	}
}

func TestTrackingTimestampLatency(t *testing.T) {
	tt := NewTrackingTimestamp(3)
	time.Sleep(time.Millisecond)
	tt = tt.WithNewPublishDelta()
	if tt.LatencyUntilPublish() <= 0 {
		t.Fatalf("expected positive latency, got %d", tt.LatencyUntilPublish())
	}
	if tt.TileID() != 3 {
		t.Fatalf("TileID() = %d, want 3", tt.TileID())
	}
}

func TestInternalMessageMapRecomputesDelta(t *testing.T) {
	m := NewInternalMessage(10, 1)
	time.Sleep(time.Millisecond)
	m2 := Map(m, func(v int) string { return "v" })
	if m2.Data() != "v" {
		t.Fatalf("Data() = %q", m2.Data())
	}
	if m2.TileID() != 1 {
		t.Fatalf("TileID() = %d, want 1", m2.TileID())
	}
	if m2.LatencyE2E() < 0 {
		t.Fatalf("LatencyE2E() negative: %d", m2.LatencyE2E())
	}
}

func TestRepeaterFiresOnceThenWaits(t *testing.T) {
	r := NewRepeater(Duration(20 * time.Millisecond))
	if !r.Fired() {
		t.Fatalf("expected first Fired() to be true")
	}
	if r.Fired() {
		t.Fatalf("expected second immediate Fired() to be false")
	}
	time.Sleep(25 * time.Millisecond)
	if !r.Fired() {
		t.Fatalf("expected Fired() to be true after interval elapsed")
	}
}

func TestRepeaterForceFire(t *testing.T) {
	r := NewRepeater(Duration(time.Hour))
	r.ForceFire()
	if !r.Fired() {
		t.Fatalf("expected ForceFire to make Fired() true immediately")
	}
}
