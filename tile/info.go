// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tile

import (
	"fmt"

	"github.com/corewire-io/corewire/ring"
	"github.com/corewire-io/corewire/seqlock"
)

// maxTiles bounds a [TileInfo] registry to a 255-slot fixed array (an ID
// fits in a byte plus one reserved "unregistered" value's worth of
// headroom).
const maxTiles = 255

// TileInfo is a shared-memory directory mapping a tile's [ID] (its slot
// index) to its [Name], so an out-of-process observer (a metrics reader,
// an operator CLI) can label a tile's output without having been told its
// name out of band.
type TileInfo struct {
	names *seqlock.Array[Name]
}

// NewTileInfo creates or attaches the shared TileInfo registry named
// "tileinfo" under ns.
func NewTileInfo(ns ring.Namespace) (*TileInfo, error) {
	shared, err := ring.CreateOrOpenArray[Name](ns.DataPath("tileinfo"), maxTiles)
	if err != nil {
		return nil, fmt.Errorf("tile: open tileinfo registry: %w", err)
	}
	return &TileInfo{names: shared.Array}, nil
}

// NewLocalTileInfo returns a process-local, non-shared TileInfo, for
// single-process tests and tools that do not need cross-process
// visibility.
func NewLocalTileInfo() *TileInfo {
	return &TileInfo{names: seqlock.NewArray[Name](maxTiles)}
}

// Register finds name's existing slot or claims the first empty one,
// returning its ID. It panics if every slot is already taken by a
// different name: registering a 256th distinct tile is a configuration
// error, not a runtime condition to recover from.
func (t *TileInfo) Register(name Name) ID {
	var cur Name
	for i := 0; i < maxTiles; i++ {
		if err := t.names.Read(i, &cur); err != nil {
			// Unwritten slot: claim it.
			t.names.Write(i, &name)
			return ID(i)
		}
		if cur == name {
			return ID(i)
		}
	}
	panic("tile: had more than 255 tiles")
}

// Lookup returns the name registered at id, if any.
func (t *TileInfo) Lookup(id ID) (Name, bool) {
	var out Name
	if err := t.names.Read(int(id), &out); err != nil {
		return Name{}, false
	}
	return out, true
}
