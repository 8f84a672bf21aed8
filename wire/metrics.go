// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters a [Connector] updates as it moves frames.
// Construct with [NewMetrics] and register the result with a
// [prometheus.Registerer] of the caller's choosing; a nil *Metrics
// disables instrumentation entirely, so it is always safe to pass one
// through even when telemetry is not wired up.
type Metrics struct {
	FramesSent     prometheus.Counter
	FramesReceived prometheus.Counter
	BytesSent      prometheus.Counter
	BytesReceived  prometheus.Counter
	Accepts        prometheus.Counter
	Disconnects    prometheus.Counter
}

// NewMetrics builds a Metrics set under the given namespace/subsystem
// and registers every collector with reg.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	m := &Metrics{
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "frames_sent_total",
			Help: "Frames written to the network.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "frames_received_total",
			Help: "Frames read from the network.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "bytes_sent_total",
			Help: "Bytes written to the network, including frame headers.",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "bytes_received_total",
			Help: "Bytes read from the network, including frame headers.",
		}),
		Accepts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "accepts_total",
			Help: "Inbound connections accepted.",
		}),
		Disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "disconnects_total",
			Help: "Connections torn down, outbound or inbound.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.FramesSent, m.FramesReceived, m.BytesSent, m.BytesReceived, m.Accepts, m.Disconnects)
	}
	return m
}
