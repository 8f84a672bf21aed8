// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package wire

import (
	"errors"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/corewire-io/corewire/timing"
)

// Token identifies one registered stream or listener inside a [Connector].
type Token uint64

// connVariant distinguishes a connection's role: outbound connections
// reconnect on failure, inbound connections and listeners do not.
type connVariant uint8

const (
	variantOutbound connVariant = iota
	variantInbound
	variantListener
)

type conn struct {
	token    Token
	variant  connVariant
	stream   *Stream
	listener *net.TCPListener
	lnFd     int          // raw fd of listener, accepted through directly (non-blocking)
	addr     *net.TCPAddr // outbound target, for reconnect
}

// SendBehavior selects who a [Connector.Send] call targets.
type SendBehavior struct {
	broadcast bool
	target    Token
}

// Broadcast sends to every connected stream.
func Broadcast() SendBehavior { return SendBehavior{broadcast: true} }

// Single sends to exactly one token.
func Single(token Token) SendBehavior { return SendBehavior{target: token} }

// PollEvent is one notable occurrence a [Connector.PollEvents] call
// surfaces to its caller.
type PollEvent struct {
	Kind      EventKind
	Listener  Token
	Token     Token
	PeerAddr  net.Addr
	Payload   []byte
	SendNanos uint64
}

// EventKind discriminates [PollEvent.Kind].
type EventKind uint8

const (
	EventAccept EventKind = iota
	EventDisconnect
	EventMessage
)

// Connector multiplexes many streams and listeners behind one [Poller],
// following this module's single-poll-loop-per-tile model: outbound
// connections it made itself are reconnected on failure via a
// [timing.Repeater]-paced retry, inbound connections accepted from a
// listener are not.
type Connector struct {
	poller         *Poller
	conns          []conn
	nextToken      Token
	reconnectEvery timing.Duration
	reconnector    timing.Repeater
	onConnectMsg   []byte
	toReconnect    []pendingReconnect
	logger         *zap.Logger
	metrics        *Metrics
}

type pendingReconnect struct {
	token Token
	addr  *net.TCPAddr
}

// defaultReconnectInterval is the default outbound reconnect retry interval.
const defaultReconnectInterval = 2 * time.Second

// NewConnector creates a Connector with its own [Poller].
func NewConnector(logger *zap.Logger, metrics *Metrics) (*Connector, error) {
	p, err := NewPoller()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := timing.DurationFromStd(defaultReconnectInterval)
	return &Connector{
		poller:         p,
		reconnectEvery: interval,
		reconnector:    timing.NewRepeater(interval),
		logger:         logger,
		metrics:        metrics,
	}, nil
}

// WithReconnectInterval overrides the outbound reconnect retry interval.
func (c *Connector) WithReconnectInterval(d time.Duration) *Connector {
	c.reconnectEvery = timing.DurationFromStd(d)
	c.reconnector.SetInterval(c.reconnectEvery)
	return c
}

// WithOnConnectMsg sets a payload automatically sent to every newly
// established connection, outbound or accepted inbound, useful for a
// handshake or resubscribe message.
func (c *Connector) WithOnConnectMsg(msg []byte) *Connector {
	c.onConnectMsg = msg
	return c
}

// Close releases the connector's poller and every registered connection.
func (c *Connector) Close() error {
	for i := range c.conns {
		c.closeAt(i)
	}
	return c.poller.Close()
}

// ListenAt starts listening on addr, returning the [Token] assigned to
// the listener.
func (c *Connector) ListenAt(addr string) (Token, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return 0, err
	}
	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return 0, err
	}
	rawConn, err := ln.SyscallConn()
	if err != nil {
		ln.Close()
		return 0, err
	}
	var fd int
	var setErr error
	if cerr := rawConn.Control(func(p uintptr) {
		fd = int(p)
		setErr = unix.SetNonblock(fd, true)
	}); cerr != nil {
		ln.Close()
		return 0, cerr
	}
	if setErr != nil {
		ln.Close()
		return 0, setErr
	}
	if err := c.poller.Register(fd); err != nil {
		ln.Close()
		return 0, err
	}

	token := c.allocToken()
	c.conns = append(c.conns, conn{token: token, variant: variantListener, listener: ln, lnFd: fd})
	return token, nil
}

// Connect dials addr, registering the resulting stream as an outbound
// connection that will be retried on failure.
func (c *Connector) Connect(addr string) (Token, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return 0, err
	}
	token := c.allocToken()
	if err := c.dial(token, tcpAddr); err != nil {
		c.toReconnect = append(c.toReconnect, pendingReconnect{token: token, addr: tcpAddr})
		return token, nil
	}
	return token, nil
}

func (c *Connector) dial(token Token, addr *net.TCPAddr) error {
	nc, err := net.DialTimeout("tcp", addr.String(), 2*time.Second)
	if err != nil {
		return err
	}
	st, err := NewStream(nc)
	if err != nil {
		nc.Close()
		return err
	}
	if err := c.poller.Register(st.Fd()); err != nil {
		st.Close()
		return err
	}
	c.conns = append(c.conns, conn{token: token, variant: variantOutbound, stream: st, addr: addr})
	if c.onConnectMsg != nil {
		_, _ = c.writeTo(len(c.conns)-1, c.onConnectMsg)
	}
	return nil
}

func (c *Connector) allocToken() Token {
	t := c.nextToken
	c.nextToken++
	return t
}

// MaybeReconnect retries every outbound connection currently pending
// reconnect, at most once per [Connector.reconnectEvery] tick.
func (c *Connector) MaybeReconnect() {
	if len(c.toReconnect) == 0 {
		return
	}
	if !c.reconnector.Fired() {
		return
	}
	pending := c.toReconnect
	c.toReconnect = nil
	for _, p := range pending {
		if err := c.dial(p.token, p.addr); err != nil {
			c.logger.Debug("wire: reconnect attempt failed", zap.String("addr", p.addr.String()), zap.Error(err))
			c.toReconnect = append(c.toReconnect, p)
			continue
		}
		c.logger.Info("wire: reconnected", zap.String("addr", p.addr.String()))
	}
}

// DisconnectToken tears down the connection identified by token.
func (c *Connector) DisconnectToken(token Token) {
	for i := range c.conns {
		if c.conns[i].token == token {
			c.closeAt(i)
			c.conns = append(c.conns[:i], c.conns[i+1:]...)
			return
		}
	}
}

// DisconnectAllOutbound tears down every outbound connection, queuing
// each for reconnect.
func (c *Connector) DisconnectAllOutbound() {
	for i := len(c.conns) - 1; i >= 0; i-- {
		if c.conns[i].variant == variantOutbound {
			c.closeAt(i)
			c.conns = append(c.conns[:i], c.conns[i+1:]...)
		}
	}
}

func (c *Connector) closeAt(i int) {
	cn := c.conns[i]
	switch cn.variant {
	case variantOutbound:
		c.poller.Deregister(cn.stream.Fd())
		cn.stream.Close()
		c.toReconnect = append(c.toReconnect, pendingReconnect{token: cn.token, addr: cn.addr})
	case variantInbound:
		c.poller.Deregister(cn.stream.Fd())
		cn.stream.Close()
	case variantListener:
		c.poller.Deregister(cn.lnFd)
		cn.listener.Close()
	}
	if c.metrics != nil {
		c.metrics.Disconnects.Inc()
	}
}

// Send writes payload to the connection(s) selected by behavior, framed
// with the current wall-clock send timestamp.
func (c *Connector) Send(behavior SendBehavior, payload []byte) {
	sendNanos := uint64(timing.NanosNow())
	if behavior.broadcast {
		for i := range c.conns {
			if c.conns[i].variant != variantListener {
				c.writeToAt(i, payload, sendNanos)
			}
		}
		return
	}
	for i := range c.conns {
		if c.conns[i].token == behavior.target && c.conns[i].variant != variantListener {
			c.writeToAt(i, payload, sendNanos)
			return
		}
	}
}

func (c *Connector) writeTo(i int, payload []byte) (bool, error) {
	return c.writeToAt(i, payload, uint64(timing.NanosNow()))
}

func (c *Connector) writeToAt(i int, payload []byte, sendNanos uint64) (bool, error) {
	needsWritable, err := c.conns[i].stream.WriteOrEnqueue(payload, sendNanos)
	if err != nil {
		c.logger.Warn("wire: write failed, disconnecting", zap.Error(err))
		c.closeAt(i)
		return false, err
	}
	if c.metrics != nil {
		c.metrics.FramesSent.Inc()
		c.metrics.BytesSent.Add(float64(FrameHeaderSize + len(payload)))
	}
	if needsWritable {
		c.poller.ModifyWritable(c.conns[i].stream.Fd(), true)
	}
	return needsWritable, nil
}

// PollEvents waits up to timeout for readiness events and dispatches them
// to handle, returning once every currently-ready fd has been serviced.
func (c *Connector) PollEvents(timeout time.Duration, handle func(PollEvent)) error {
	c.MaybeReconnect()

	var buf [128]ReadyEvent
	events, err := c.poller.Wait(buf[:0], int(timeout/time.Millisecond))
	if err != nil {
		return err
	}
	for _, ev := range events {
		c.handleReady(ev, handle)
	}
	return nil
}

func (c *Connector) handleReady(ev ReadyEvent, handle func(PollEvent)) {
	for i := range c.conns {
		cn := &c.conns[i]
		switch cn.variant {
		case variantListener:
			if cn.lnFd != ev.Fd {
				continue
			}
			c.acceptLoop(cn.token, handle)
			return
		default:
			if cn.stream.Fd() != ev.Fd {
				continue
			}
			if ev.Readiness&ReadinessWritable != 0 {
				if drained, _ := cn.stream.DrainBacklog(); drained {
					c.poller.ModifyWritable(cn.stream.Fd(), false)
				}
			}
			if ev.Readiness&(ReadinessReadable|ReadinessHangup) != 0 {
				token := cn.token
				closed, err := cn.stream.Poll(func(f ReceivedFrame) {
					if c.metrics != nil {
						c.metrics.FramesReceived.Inc()
						c.metrics.BytesReceived.Add(float64(FrameHeaderSize + len(f.Payload)))
					}
					handle(PollEvent{Kind: EventMessage, Token: token, Payload: f.Payload, SendNanos: f.SendNanos})
				})
				if closed || err != nil {
					c.DisconnectToken(token)
					handle(PollEvent{Kind: EventDisconnect, Token: token})
				}
			}
			return
		}
	}
}

// acceptLoop drains every connection currently pending on the listener
// identified by listenerToken, accepting directly off its raw fd (not
// [net.TCPListener.Accept], which blocks the calling goroutine in the Go
// runtime's own netpoller instead of returning WouldBlock to this
// package's epoll-driven loop) until accept4(2) reports EAGAIN.
func (c *Connector) acceptLoop(listenerToken Token, handle func(PollEvent)) {
	var lnFd int
	found := false
	for i := range c.conns {
		if c.conns[i].token == listenerToken {
			lnFd = c.conns[i].lnFd
			found = true
		}
	}
	if !found {
		return
	}
	for {
		nfd, _, err := unix.Accept(lnFd)
		if err != nil {
			if !errors.Is(err, unix.EAGAIN) {
				c.logger.Debug("wire: accept failed", zap.Error(err))
			}
			return
		}
		nc, peerAddr, err := wrapAcceptedConn(nfd)
		if err != nil {
			unix.Close(nfd)
			c.logger.Warn("wire: failed to wrap accepted connection", zap.Error(err))
			continue
		}
		st, err := NewStream(nc)
		if err != nil {
			nc.Close()
			continue
		}
		if err := c.poller.Register(st.Fd()); err != nil {
			st.Close()
			continue
		}
		token := c.allocToken()
		c.conns = append(c.conns, conn{token: token, variant: variantInbound, stream: st})
		if c.onConnectMsg != nil {
			_, _ = c.writeTo(len(c.conns)-1, c.onConnectMsg)
		}
		if c.metrics != nil {
			c.metrics.Accepts.Inc()
		}
		handle(PollEvent{Kind: EventAccept, Listener: listenerToken, Token: token, PeerAddr: peerAddr})
	}
}

// wrapAcceptedConn turns a raw accepted socket fd into a *net.TCPConn via
// [net.FileConn], which dup()s the fd internally, so the os.File wrapper
// used only to make that call must be closed regardless of outcome.
func wrapAcceptedConn(fd int) (*net.TCPConn, net.Addr, error) {
	f := os.NewFile(uintptr(fd), "accepted-conn")
	defer f.Close()
	genericConn, err := net.FileConn(f)
	if err != nil {
		return nil, nil, err
	}
	tc, ok := genericConn.(*net.TCPConn)
	if !ok {
		genericConn.Close()
		return nil, nil, errors.New("wire: accepted connection is not TCP")
	}
	return tc, tc.RemoteAddr(), nil
}
