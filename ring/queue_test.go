// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"sync"
	"testing"
)

func TestQueueCapacityRoundsUpToPow2(t *testing.T) {
	q := New[int](MPMC, 5)
	if q.Cap() != 8 {
		t.Fatalf("Cap() = %d, want 8", q.Cap())
	}
}

func TestProduceConsumeSPMC(t *testing.T) {
	q := New[int](SPMC, 4)
	c := NewConsumerBare(q)

	for i := 0; i < 4; i++ {
		v := i
		q.Produce(&v)
	}

	for i := 0; i < 4; i++ {
		var out int
		if err := c.TryConsume(&out); err != nil {
			t.Fatalf("TryConsume(%d): %v", i, err)
		}
		if out != i {
			t.Fatalf("got %d, want %d", out, i)
		}
	}
	var out int
	if err := c.TryConsume(&out); !IsEmpty(err) {
		t.Fatalf("expected empty, got %v", err)
	}
}

func TestConsumerSpedPastAndRecover(t *testing.T) {
	q := New[int](SPMC, 2)
	c := NewConsumerBare(q)

	for i := 0; i < 2; i++ {
		v := i
		q.Produce(&v)
	}
	// Lap the 2-slot queue twice over without the consumer reading, so its
	// expected version is stale by more than one lap.
	for i := 2; i < 6; i++ {
		v := i
		q.Produce(&v)
	}

	var out int
	err := c.TryConsume(&out)
	if !IsSpedPast(err) {
		t.Fatalf("expected ErrSpedPast, got %v", err)
	}
	c.Recover()
	// One recovery raises the expected version by a single lap; the slot is
	// two laps ahead, so the read is still sped past.
	if err := c.TryConsume(&out); !IsSpedPast(err) {
		t.Fatalf("after one recover: expected ErrSpedPast, got %v", err)
	}
	c.Recover()
	if err := c.TryConsume(&out); err != nil {
		t.Fatalf("after recover: %v", err)
	}
	if out != 4 {
		t.Fatalf("after recover: got %d, want 4", out)
	}
}

func TestProduceConsumeMPMCConcurrent(t *testing.T) {
	q := New[int](MPMC, 1024)
	const producers = 4
	const perProducer = 2000

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				v := i
				q.Produce(&v)
			}
		}()
	}
	wg.Wait()

	c := NewConsumerBare(q)
	got := 0
	var out int
	for {
		err := c.TryConsume(&out)
		if err == nil {
			got++
			continue
		}
		if IsSpedPast(err) {
			c.Recover()
			continue
		}
		break
	}
	if got == 0 {
		t.Fatalf("expected to consume some records")
	}
}

func TestProducerHandleProducesFirstThenNormally(t *testing.T) {
	q := New[int](SPMC, 2)
	p := NewProducer(q)
	v := 1
	p.Produce(&v)
	v = 2
	p.Produce(&v)

	c := NewConsumerBare(q)
	var out int
	if err := c.TryConsume(&out); err != nil || out != 1 {
		t.Fatalf("got %d, %v; want 1, nil", out, err)
	}
}

func TestConsumerWrapperConsumesAll(t *testing.T) {
	q := New[int](SPMC, 8)
	for i := 0; i < 5; i++ {
		v := i
		q.Produce(&v)
	}
	c := NewConsumer[int](q, nil)
	var got []int
	n := c.Consume(func(v int) { got = append(got, v) })
	if n != 5 || len(got) != 5 {
		t.Fatalf("n=%d got=%v", n, got)
	}
}

func TestIsPoisonedFalseForCleanCell(t *testing.T) {
	q := New[int](SPMC, 4)
	if q.IsPoisoned(0) {
		t.Fatalf("fresh cell should not be poisoned")
	}
}
