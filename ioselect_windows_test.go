//go:build windows
// +build windows

package ioselect_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cloudlink/ioselect"
)

func echoServerWindows(t *testing.T) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				_, _ = conn.Write(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()
	return ln.Addr().String(), func() { _ = ln.Close() }
}

func TestPollDeliversSingleCompletionEvent(t *testing.T) {
	addr, stop := echoServerWindows(t)
	defer stop()

	p, err := ioselect.New()
	require.NoError(t, err)
	defer p.Close()

	stream, err := ioselect.Connect("tcp", addr, time.Second)
	require.NoError(t, err)
	defer stream.Close()

	token, err := p.Register(stream, ioselect.Readable)
	require.NoError(t, err)

	_, err = stream.Write([]byte("hello"))
	require.NoError(t, err)

	events := ioselect.NewEventList(8)
	timeout := 2000
	n, err := p.Poll(events, &timeout)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, token, events.At(0).ID())

	buf := make([]byte, 16)
	n2, err := stream.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n2]))
}
