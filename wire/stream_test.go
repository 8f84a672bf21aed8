// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package wire

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFrameHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, FrameHeaderSize)
	encodeFrameHeader(buf, 1234, 0xdeadbeefcafe)
	gotLen, gotTS := decodeFrameHeader(buf)
	require.Equal(t, 1234, gotLen)
	require.Equal(t, uint64(0xdeadbeefcafe), gotTS)
}

func TestStreamWriteAndPollRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	clientDone := make(chan *Stream, 1)
	go func() {
		conn, derr := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, derr)
		st, serr := NewStream(conn)
		require.NoError(t, serr)
		clientDone <- st
	}()

	serverConn, err := ln.Accept()
	require.NoError(t, err)
	serverStream, err := NewStream(serverConn)
	require.NoError(t, err)
	defer serverStream.Close()

	clientStream := <-clientDone
	defer clientStream.Close()

	_, err = clientStream.WriteOrEnqueue([]byte("ping"), 42)
	require.NoError(t, err)

	var received ReceivedFrame
	require.Eventually(t, func() bool {
		_, perr := serverStream.Poll(func(f ReceivedFrame) {
			received = f
		})
		return perr == nil && received.Payload != nil
	}, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, "ping", string(received.Payload))
	require.Equal(t, uint64(42), received.SendNanos)
}

func TestStreamRejectsOversizedFrame(t *testing.T) {
	s := &Stream{rxBuf: make([]byte, FrameHeaderSize), rxState: rxWantHeader}
	encodeFrameHeader(s.rxBuf, MaxFrameLen+1, 0)
	s.rxFilled = FrameHeaderSize

	err := s.consumeBuffered(func(ReceivedFrame) {})
	require.ErrorIs(t, err, errMalformedFrame)
}
