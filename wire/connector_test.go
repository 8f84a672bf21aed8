// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnectorAcceptAndMessage(t *testing.T) {
	server, err := NewConnector(nil, nil)
	require.NoError(t, err)
	defer server.Close()

	listenToken, err := server.ListenAt("127.0.0.1:0")
	require.NoError(t, err)

	addr := serverAddr(t, server, listenToken)

	client, err := NewConnector(nil, nil)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Connect(addr)
	require.NoError(t, err)

	var acceptedToken Token
	require.Eventually(t, func() bool {
		got := false
		server.PollEvents(50*time.Millisecond, func(ev PollEvent) {
			if ev.Kind == EventAccept {
				acceptedToken = ev.Token
				got = true
			}
		})
		return got
	}, 2*time.Second, 10*time.Millisecond)

	client.Send(Broadcast(), []byte("hello"))

	var gotPayload string
	require.Eventually(t, func() bool {
		found := false
		server.PollEvents(50*time.Millisecond, func(ev PollEvent) {
			if ev.Kind == EventMessage && ev.Token == acceptedToken {
				gotPayload = string(ev.Payload)
				found = true
			}
		})
		return found
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, "hello", gotPayload)
}

func TestConnectorDisconnectQueuesReconnect(t *testing.T) {
	server, err := NewConnector(nil, nil)
	require.NoError(t, err)
	defer server.Close()

	listenToken, err := server.ListenAt("127.0.0.1:0")
	require.NoError(t, err)
	addr := serverAddr(t, server, listenToken)

	client, err := NewConnector(nil, nil)
	require.NoError(t, err)
	defer client.Close()
	client.WithReconnectInterval(10 * time.Millisecond)

	token, err := client.Connect(addr)
	require.NoError(t, err)

	client.DisconnectToken(token)
	require.Len(t, client.toReconnect, 1)
}

func serverAddr(t *testing.T, c *Connector, listenToken Token) string {
	t.Helper()
	for i := range c.conns {
		if c.conns[i].token == listenToken {
			return c.conns[i].listener.Addr().String()
		}
	}
	t.Fatal("listener token not found")
	return ""
}
