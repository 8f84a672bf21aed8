// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package wire

import (
	"errors"
	"net"

	"code.hybscloud.com/atomix"
	"golang.org/x/sys/unix"
)

// ErrWouldBlock indicates a non-blocking socket operation could not
// complete immediately.
var ErrWouldBlock = errors.New("wire: operation would block")

// rxState tracks where a [Stream] is within the two-phase receive state
// machine: reading a frame's fixed-size header, then reading its payload.
type rxState int

const (
	rxWantHeader rxState = iota
	rxWantPayload
)

// Stream drives one non-blocking, edge-triggered TCP socket. It frames
// outbound writes with [encodeFrameHeader], buffers anything the kernel
// socket buffer will not accept yet, and reassembles inbound frames
// across partial reads.
type Stream struct {
	fd   int
	conn net.Conn // retained so the OS-level fd stays open and GC-tracked

	writableArmed atomix.Bool // true once we have asked the poller for EPOLLOUT

	sendBacklog []byte // unsent bytes, header-and-payload already framed
	sendOff     int

	rxBuf     []byte
	rxFilled  int
	rxState   rxState
	rxWantLen int // bytes still needed to complete the current phase

	rxSendNanos uint64
	payloadBuf  []byte
}

// NewStream takes ownership of conn, putting its underlying fd into
// non-blocking mode and disabling Nagle's algorithm.
func NewStream(conn net.Conn) (*Stream, error) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil, errors.New("wire: Stream requires a *net.TCPConn")
	}
	if err := tc.SetNoDelay(true); err != nil {
		return nil, err
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return nil, err
	}
	var fd int
	var setErr error
	if err := raw.Control(func(p uintptr) {
		fd = int(p)
		setErr = unix.SetNonblock(fd, true)
	}); err != nil {
		return nil, err
	}
	if setErr != nil {
		return nil, setErr
	}
	return &Stream{
		fd:      fd,
		conn:    conn,
		rxBuf:   make([]byte, RxBufSize),
		rxState: rxWantHeader,
	}, nil
}

// Fd returns the underlying file descriptor, for registration with a
// [Poller].
func (s *Stream) Fd() int { return s.fd }

// Close closes the underlying connection.
func (s *Stream) Close() error { return s.conn.Close() }

// WriteOrEnqueue frames payload with the given send timestamp and writes
// as much as the socket will immediately accept, buffering the remainder
// in the send backlog for [Stream.DrainBacklog] to finish once the socket
// becomes writable again. needsWritableInterest reports whether the
// caller must (re-)arm EPOLLOUT on this stream's fd.
func (s *Stream) WriteOrEnqueue(payload []byte, sendNanos uint64) (needsWritableInterest bool, err error) {
	if len(s.sendBacklog) > s.sendOff {
		// Already backlogged: append behind existing unsent bytes instead
		// of interleaving frames out of order.
		s.appendFrame(payload, sendNanos)
		return true, nil
	}

	frame := s.stageFrame(payload, sendNanos)
	n, werr := s.rawWrite(frame)
	if werr != nil && !errors.Is(werr, ErrWouldBlock) {
		return false, werr
	}
	if n == len(frame) {
		return false, nil
	}
	s.sendBacklog = frame
	s.sendOff = n
	s.armWritable(true)
	return true, nil
}

// DrainBacklog attempts to flush any buffered, unsent bytes. It returns
// true once the backlog is fully drained.
func (s *Stream) DrainBacklog() (drained bool, err error) {
	if len(s.sendBacklog) <= s.sendOff {
		return true, nil
	}
	n, werr := s.rawWrite(s.sendBacklog[s.sendOff:])
	if werr != nil && !errors.Is(werr, ErrWouldBlock) {
		return false, werr
	}
	s.sendOff += n
	if s.sendOff >= len(s.sendBacklog) {
		s.sendBacklog = s.sendBacklog[:0]
		s.sendOff = 0
		s.armWritable(false)
		return true, nil
	}
	return false, nil
}

func (s *Stream) stageFrame(payload []byte, sendNanos uint64) []byte {
	frame := make([]byte, FrameHeaderSize+len(payload))
	encodeFrameHeader(frame, len(payload), sendNanos)
	copy(frame[FrameHeaderSize:], payload)
	return frame
}

func (s *Stream) appendFrame(payload []byte, sendNanos uint64) {
	frame := s.stageFrame(payload, sendNanos)
	s.sendBacklog = append(s.sendBacklog, frame...)
}

func (s *Stream) armWritable(want bool) {
	s.writableArmed.StoreRelease(want)
}

// WritableArmed reports whether this stream currently expects an EPOLLOUT
// notification to continue draining its backlog.
func (s *Stream) WritableArmed() bool {
	return s.writableArmed.LoadAcquire()
}

func (s *Stream) rawWrite(b []byte) (int, error) {
	n, err := unix.Write(s.fd, b)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, ErrWouldBlock
		}
		return 0, err
	}
	return n, nil
}

// ReceivedFrame is one fully reassembled inbound message.
type ReceivedFrame struct {
	Payload   []byte
	SendNanos uint64
}

// Poll drains everything currently readable from the socket, invoking
// onFrame for each complete frame it assembles. It returns io.EOF-class
// errors (via the returned bool) when the peer closed the connection.
func (s *Stream) Poll(onFrame func(ReceivedFrame)) (closed bool, err error) {
	for {
		n, rerr := unix.Read(s.fd, s.rxBuf[s.rxFilled:])
		if rerr != nil {
			if errors.Is(rerr, unix.EAGAIN) {
				break
			}
			return false, rerr
		}
		if n == 0 {
			return true, nil
		}
		s.rxFilled += n
		if cerr := s.consumeBuffered(onFrame); cerr != nil {
			return false, cerr
		}
	}
	return false, nil
}

// errMalformedFrame indicates a peer sent a frame whose declared payload
// length exceeds [MaxFrameLen], almost certainly stream desynchronization
// rather than a legitimately huge message.
var errMalformedFrame = errors.New("wire: frame payload length exceeds maximum")

// consumeBuffered extracts as many complete frames as possible from the
// stream's receive buffer, compacting whatever header/payload bytes
// remain back to the front for the next read.
func (s *Stream) consumeBuffered(onFrame func(ReceivedFrame)) error {
	offset := 0
	for {
		switch s.rxState {
		case rxWantHeader:
			if s.rxFilled-offset < FrameHeaderSize {
				goto drained
			}
			payloadLen, sendNanos := decodeFrameHeader(s.rxBuf[offset : offset+FrameHeaderSize])
			if payloadLen > MaxFrameLen {
				return errMalformedFrame
			}
			offset += FrameHeaderSize
			s.rxSendNanos = sendNanos
			s.payloadBuf = make([]byte, payloadLen)
			s.rxWantLen = payloadLen
			s.rxState = rxWantPayload
		case rxWantPayload:
			avail := s.rxFilled - offset
			if avail < s.rxWantLen {
				copy(s.payloadBuf[len(s.payloadBuf)-s.rxWantLen:], s.rxBuf[offset:s.rxFilled])
				s.rxWantLen -= avail
				offset = s.rxFilled
				goto drained
			}
			copy(s.payloadBuf[len(s.payloadBuf)-s.rxWantLen:], s.rxBuf[offset:offset+s.rxWantLen])
			offset += s.rxWantLen
			onFrame(ReceivedFrame{Payload: s.payloadBuf, SendNanos: s.rxSendNanos})
			s.rxState = rxWantHeader
			s.rxWantLen = 0
		}
	}
drained:
	remaining := s.rxFilled - offset
	if remaining > 0 && offset > 0 {
		copy(s.rxBuf[:remaining], s.rxBuf[offset:s.rxFilled])
	}
	s.rxFilled = remaining
	return nil
}
