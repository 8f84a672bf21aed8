// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire extends this module's ring-queue transport across a TCP
// connection. Every message is framed with a fixed 12-byte header (a
// little-endian payload length followed by a little-endian send
// timestamp in nanoseconds) so a receiver can always tell where one
// message ends and the next begins without any out-of-band delimiter.
//
// [Stream] drives one non-blocking, edge-triggered socket; [Connector]
// multiplexes many streams and listeners behind a single [Poller], handles
// outbound auto-reconnect, and fans out accept/disconnect/message events
// to a caller-supplied handler: the same "no async runtime, one thread
// per tile" model the rest of this module assumes. There is deliberately
// no use of [net.Conn] for the data path: its blocking-with-deadlines
// model does not expose the edge-triggered readiness this package's
// backpressure handling depends on.
package wire
