// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package corewire is the root of a low-latency messaging substrate for
// pipelines organized as a graph of long-lived execution units ("tiles")
// pinned to CPU cores. It carries no code of its own; the substrate is
// split across packages by concern, the way a tile's own pipeline is
// split by concern:
//
//   - [github.com/corewire-io/corewire/seqlock]: the versioned
//     single-slot cell and fixed-length cell array every other package
//     is built from.
//   - [github.com/corewire-io/corewire/ring]: power-of-two MPMC/SPMC
//     ring queues over seqlock cells, plus the shared-memory
//     create-or-attach discipline and on-disk namespace layout.
//   - [github.com/corewire-io/corewire/wire]: the framed TCP stream and
//     connector that extend ring-queue-like broadcast semantics across
//     machines.
//   - [github.com/corewire-io/corewire/timing]: the monotonic instant,
//     wall-clock nanos, tracking timestamp, and repeater types the
//     other packages pass around instead of [time.Time] directly.
//   - [github.com/corewire-io/corewire/tile]: the adapter and loop
//     driver that wires a tile's producer/consumer handles together and
//     measures its per-iteration utilisation.
package corewire
