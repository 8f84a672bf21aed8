// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tile drives the one-thread-per-execution-unit loop this module's
// producers and consumers are meant to run under: a [Tile] pins itself to
// a CPU core, repeats [Tile.LoopBody] until a [StopFlag] is raised, and
// reports its utilisation on a rolling window via [Metrics]. [Run] is the
// blocking loop body a caller starts with `go tile.Run(...)`.
package tile
