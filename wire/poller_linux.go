// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package wire

import (
	"golang.org/x/sys/unix"
)

// Readiness is a bitmask of the socket conditions a [Poller] can report.
type Readiness uint32

const (
	ReadinessReadable Readiness = 1 << iota
	ReadinessWritable
	ReadinessError
	ReadinessHangup
)

// Poller is an edge-triggered epoll(7) readiness multiplexer. One Poller
// backs one [Connector] and is meant to be driven from a single tile's
// loop body.
type Poller struct {
	epfd int
}

// NewPoller creates an epoll instance.
func NewPoller() (*Poller, error) {
	fd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	return &Poller{epfd: fd}, nil
}

// Close releases the epoll instance.
func (p *Poller) Close() error {
	return unix.Close(p.epfd)
}

// Register arms fd for edge-triggered readable and writable notifications.
func (p *Poller) Register(fd int) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLRDHUP | unix.EPOLLET,
		Fd:     int32(fd),
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// ModifyWritable re-arms fd's writable interest, used to ask for another
// edge-triggered EPOLLOUT notification after a partial write leaves data
// in the backlog and the previous interest edge has already fired once.
func (p *Poller) ModifyWritable(fd int, writable bool) error {
	events := uint32(unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLET)
	if writable {
		events |= unix.EPOLLOUT
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

// Deregister removes fd from the poller.
func (p *Poller) Deregister(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// ReadyEvent reports the fd a readiness notification belongs to and which
// conditions fired.
type ReadyEvent struct {
	Fd        int
	Readiness Readiness
}

// Wait blocks up to timeoutMillis (negative means forever) for readiness
// events, appending them to events and returning the resulting slice.
func (p *Poller) Wait(events []ReadyEvent, timeoutMillis int) ([]ReadyEvent, error) {
	var raw [128]unix.EpollEvent
	n, err := unix.EpollWait(p.epfd, raw[:], timeoutMillis)
	if err != nil {
		if err == unix.EINTR {
			return events, nil
		}
		return events, err
	}
	for i := 0; i < n; i++ {
		var r Readiness
		if raw[i].Events&unix.EPOLLIN != 0 {
			r |= ReadinessReadable
		}
		if raw[i].Events&unix.EPOLLOUT != 0 {
			r |= ReadinessWritable
		}
		if raw[i].Events&(unix.EPOLLERR) != 0 {
			r |= ReadinessError
		}
		if raw[i].Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
			r |= ReadinessHangup
		}
		events = append(events, ReadyEvent{Fd: int(raw[i].Fd), Readiness: r})
	}
	return events, nil
}
