package backend

import (
	"bufio"
	"net"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startFakeBackend runs a one-shot TCP listener that accepts a single
// connection, serves it with handle, then closes it.
func startFakeBackend(t *testing.T, handle func(net.Conn)) (host, port string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()

	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestProbeSuccess(t *testing.T) {
	host, port := startFakeBackend(t, func(conn net.Conn) {})
	b := New(host, port)

	assert.True(t, b.Probe())
}

func TestProbeFailureOnRefusedConnection(t *testing.T) {
	b := New("127.0.0.1", "1") // nothing listens on port 1
	assert.False(t, b.Probe())
}

func TestSendAndAwaitAckHappyPath(t *testing.T) {
	host, port := startFakeBackend(t, func(conn net.Conn) {
		reader := bufio.NewReader(conn)
		_, _ = reader.ReadString('\n')
		conn.Write([]byte("ACK\n"))
		conn.Write([]byte("OK:world\n"))
	})
	b := New(host, port)

	response, err := b.SendAndAwaitAck("OPERACION:CLIENT_REQ;USER:alice\nHELLO")
	require.NoError(t, err)
	assert.Equal(t, "OK:world", response)
}

func TestSendAndAwaitAckCaseInsensitiveAck(t *testing.T) {
	host, port := startFakeBackend(t, func(conn net.Conn) {
		reader := bufio.NewReader(conn)
		_, _ = reader.ReadString('\n')
		conn.Write([]byte("ack\n"))
		conn.Write([]byte("done\n"))
	})
	b := New(host, port)

	response, err := b.SendAndAwaitAck("PING")
	require.NoError(t, err)
	assert.Equal(t, "done", response)
}

func TestSendAndAwaitAckFailsAfterExactlyThreeAttempts(t *testing.T) {
	var attempts int32
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			atomic.AddInt32(&attempts, 1)
			conn.Close() // close immediately: no ACK ever arrives
		}
	}()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	b := New(host, port)

	_, err = b.SendAndAwaitAck("MESSAGE;X:1")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "backend unreachable"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts), "a 4th attempt must never be made")
}

func TestSendAndAwaitAckWrongAckIsProtocolError(t *testing.T) {
	host, port := startFakeBackendRepeating(t, func(conn net.Conn) {
		reader := bufio.NewReader(conn)
		_, _ = reader.ReadString('\n')
		conn.Write([]byte("NOTANACK\n"))
	})
	b := New(host, port)

	_, err := b.SendAndAwaitAck("MESSAGE")
	require.Error(t, err)
}

// startFakeBackendRepeating serves every accepted connection with handle,
// used by tests that expect multiple retry attempts to all hit the server.
func startFakeBackendRepeating(t *testing.T, handle func(net.Conn)) (host, port string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			handle(conn)
			conn.Close()
		}
	}()

	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestMarkDeadAliveAndSynced(t *testing.T) {
	b := New("127.0.0.1", "9001")
	assert.True(t, b.IsAlive(), "REGISTERED state starts alive")
	assert.False(t, b.IsSynced(), "REGISTERED state starts fresh")

	b.MarkDead()
	assert.False(t, b.IsAlive())

	b.MarkAlive()
	assert.True(t, b.IsAlive())

	b.MarkSynced()
	assert.True(t, b.IsSynced())

	b.MarkFresh()
	assert.False(t, b.IsSynced())
}

func TestAddrFormatting(t *testing.T) {
	b := New("127.0.0.1", "9001")
	assert.Equal(t, "127.0.0.1:9001", b.Addr())
	assert.Equal(t, "127.0.0.1:9001", b.String())
}
