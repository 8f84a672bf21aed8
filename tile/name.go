// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tile

// ID identifies a tile within a [TileInfo] registry.
type ID = uint16

// nameLen bounds a [Name] to a fixed-size, no-heap-allocation short
// typename: long enough for any reasonable tile identifier, short enough
// to keep [TileInfo] a flat, mmap-friendly array of fixed-size records.
const nameLen = 32

// Name is a fixed-size, comparable tile identifier suitable for storing
// directly inside a shared-memory [seqlock.Array], unlike a Go string
// (which is a pointer to heap data another process cannot see).
type Name [nameLen]byte

// NewName truncates s to fit a Name, zero-padding the remainder.
func NewName(s string) Name {
	var n Name
	copy(n[:], s)
	return n
}

// String returns the name with trailing zero bytes trimmed.
func (n Name) String() string {
	i := 0
	for i < len(n) && n[i] != 0 {
		i++
	}
	return string(n[:i])
}

// IsEmpty reports whether the name has never been set.
func (n Name) IsEmpty() bool {
	return n == Name{}
}
