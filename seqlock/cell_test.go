// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package seqlock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCellEmptyRead(t *testing.T) {
	var c Cell[int]
	var out int
	if err := c.Read(&out); !IsEmpty(err) {
		t.Fatalf("want ErrEmpty, got %v", err)
	}
	if c.WasEverWritten() {
		t.Fatalf("new cell should not report written")
	}
}

func TestCellWriteRead(t *testing.T) {
	var c Cell[int]
	v := 42
	c.Write(&v)
	var out int
	if err := c.Read(&out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out != 42 {
		t.Fatalf("got %d, want 42", out)
	}
	if c.Version() != 2 {
		t.Fatalf("version = %d, want 2", c.Version())
	}
}

func TestCellReadWithVersionSpedPast(t *testing.T) {
	var c Cell[int]
	v := 1
	c.Write(&v)
	expected := c.Version()
	v = 2
	c.Write(&v) // version now 4, reader expecting 2 was sped past

	var out int
	err := c.ReadWithVersion(&out, expected)
	if !IsSpedPast(err) {
		t.Fatalf("want ErrSpedPast, got %v", err)
	}
}

func TestCellWriteUnpoison(t *testing.T) {
	var c Cell[int]
	c.version.StoreRelaxed(1) // simulate a crashed writer mid-flight
	v := 7
	c.WriteUnpoison(&v)
	if c.Version() != 2 {
		t.Fatalf("version = %d, want 2", c.Version())
	}
	var out int
	if err := c.Read(&out); err != nil || out != 7 {
		t.Fatalf("Read = %d, %v; want 7, nil", out, err)
	}
}

func TestCellConcurrentReadWrite(t *testing.T) {
	const n = 64
	var c Cell[[n]int]
	var done atomic.Bool

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var msg [n]int
		for !done.Load() {
			if err := c.Read(&msg); err != nil {
				continue
			}
			first := msg[0]
			for _, v := range msg {
				if v != first {
					t.Errorf("torn read: %v", msg)
					return
				}
			}
		}
	}()
	go func() {
		defer wg.Done()
		deadline := time.Now().Add(100 * time.Millisecond)
		var msg [n]int
		count := 0
		for time.Now().Before(deadline) {
			for i := range msg {
				msg[i] = count
			}
			c.Write(&msg)
			count++
		}
		done.Store(true)
	}()
	wg.Wait()
}

func TestCellConcurrentMultiProducer(t *testing.T) {
	const n = 32
	var c Cell[[n]int]
	var done atomic.Bool

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		var msg [n]int
		for !done.Load() {
			if err := c.Read(&msg); err != nil {
				continue
			}
			first := msg[0]
			for _, v := range msg {
				if v != first {
					t.Errorf("torn read: %v", msg)
					return
				}
			}
		}
	}()
	producer := func(tag int) {
		defer wg.Done()
		deadline := time.Now().Add(100 * time.Millisecond)
		var msg [n]int
		count := 0
		for time.Now().Before(deadline) {
			for i := range msg {
				msg[i] = tag*1_000_000 + count
			}
			c.WriteMultiProducer(&msg)
			count++
		}
	}
	go producer(1)
	go func() {
		producer(2)
		done.Store(true)
	}()
	wg.Wait()
}
