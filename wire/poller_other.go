// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package wire

import "errors"

// Readiness is a bitmask of the socket conditions a [Poller] can report.
type Readiness uint32

const (
	ReadinessReadable Readiness = 1 << iota
	ReadinessWritable
	ReadinessError
	ReadinessHangup
)

// ReadyEvent reports the fd a readiness notification belongs to and which
// conditions fired.
type ReadyEvent struct {
	Fd        int
	Readiness Readiness
}

// Poller is unavailable outside Linux: this module's edge-triggered
// readiness model is built directly on epoll(7), which has no portable
// equivalent in golang.org/x/sys for kqueue-based platforms in this
// codebase's current scope.
type Poller struct{}

var errUnsupported = errors.New("wire: epoll-based Poller is only available on linux")

func NewPoller() (*Poller, error)                            { return nil, errUnsupported }
func (p *Poller) Close() error                               { return errUnsupported }
func (p *Poller) Register(fd int) error                      { return errUnsupported }
func (p *Poller) ModifyWritable(fd int, writable bool) error { return errUnsupported }
func (p *Poller) Deregister(fd int) error                    { return errUnsupported }
func (p *Poller) Wait(events []ReadyEvent, timeoutMillis int) ([]ReadyEvent, error) {
	return events, errUnsupported
}
