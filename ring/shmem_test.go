// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateOrOpenQueueCreatesThenAttaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-queue")

	creator, err := CreateOrOpenQueue[int](path, SPMC, 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer creator.Close()

	v := 42
	creator.Produce(&v)

	attacher, err := CreateOrOpenQueue[int](path, SPMC, 4)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	defer attacher.Close()

	c := NewConsumerBare(attacher.Queue)
	var out int
	if err := c.TryConsume(&out); err != nil || out != 42 {
		t.Fatalf("got %d, %v; want 42, nil", out, err)
	}
}

func TestCreateOrOpenQueueElementSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-queue")

	creator, err := CreateOrOpenQueue[int64](path, SPMC, 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer creator.Close()

	_, err = CreateOrOpenQueue[[3]int64](path, SPMC, 4)
	var sizeErr *ElementSizeChangedError
	if err == nil {
		t.Fatalf("expected ElementSizeChangedError")
	}
	if !asElementSizeChanged(err, &sizeErr) {
		t.Fatalf("got %v, want *ElementSizeChangedError", err)
	}
}

func asElementSizeChanged(err error, target **ElementSizeChangedError) bool {
	e, ok := err.(*ElementSizeChangedError)
	if ok {
		*target = e
	}
	return ok
}

func TestCreateOrOpenQueueDetectsPoisonedCell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-queue-poisoned")

	creator, err := CreateOrOpenQueue[int](path, SPMC, 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := creator.Close(); err != nil {
		t.Fatalf("close creator: %v", err)
	}

	// Simulate a producer that died mid-write: stomp cell 0's version, the
	// first 8 bytes of the cell region per the header's documented layout,
	// to a value that is odd and will never be completed by a live writer.
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("open for poisoning: %v", err)
	}
	var versionBytes [8]byte
	binary.LittleEndian.PutUint64(versionBytes[:], 3)
	if _, err := f.WriteAt(versionBytes[:], headerSize); err != nil {
		t.Fatalf("poison cell: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close after poisoning: %v", err)
	}

	_, err = CreateOrOpenQueue[int](path, SPMC, 4)
	var poisonErr *ElementPoisonedError
	if !asElementPoisoned(err, &poisonErr) {
		t.Fatalf("got %v, want *ElementPoisonedError", err)
	}
	if poisonErr.Index != 0 {
		t.Fatalf("Index = %d, want 0", poisonErr.Index)
	}
}

func asElementPoisoned(err error, target **ElementPoisonedError) bool {
	e, ok := err.(*ElementPoisonedError)
	if ok {
		*target = e
	}
	return ok
}

func TestCreateOrOpenArrayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-array")

	creator, err := CreateOrOpenArray[int](path, 10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer creator.Close()

	v := 7
	creator.Write(3, &v)

	attacher, err := CreateOrOpenArray[int](path, 10)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	defer attacher.Close()

	var out int
	if err := attacher.Read(3, &out); err != nil || out != 7 {
		t.Fatalf("got %d, %v; want 7, nil", out, err)
	}
}
