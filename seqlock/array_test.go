// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package seqlock

import "testing"

func TestArrayBasic(t *testing.T) {
	a := NewArray[string](4)
	if a.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", a.Len())
	}
	name := "tile-0"
	a.Write(0, &name)
	var out string
	if err := a.Read(0, &out); err != nil || out != "tile-0" {
		t.Fatalf("Read(0) = %q, %v", out, err)
	}
	var empty string
	if err := a.Read(1, &empty); !IsEmpty(err) {
		t.Fatalf("Read(1) on unwritten cell: %v", err)
	}
}

func TestArrayAllIsLazy(t *testing.T) {
	a := NewArray[int](3)
	v0, v2 := 10, 30
	a.Write(0, &v0)
	a.Write(2, &v2)

	var seen []int
	for i, v := range a.All() {
		seen = append(seen, i*100+v)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 written cells, got %d: %v", len(seen), seen)
	}
}

func TestArrayResetClearsAll(t *testing.T) {
	a := NewArray[int](2)
	v := 1
	a.Write(0, &v)
	a.Write(1, &v)
	a.Reset()
	var out int
	if err := a.Read(0, &out); !IsEmpty(err) {
		t.Fatalf("expected empty after reset, got %v", err)
	}
}
