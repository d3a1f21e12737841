//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

package ioselect_test

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudlink/ioselect"
)

// echoServer accepts exactly one connection and echoes everything it
// reads back to the peer until the connection closes.
func echoServer(t *testing.T) (addr string, stop func()) {
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

func TestPollDeliversSingleReadableEvent(t *testing.T) {
	addr, stop := echoServer(t)
	defer stop()

	p, err := ioselect.New()
	require.NoError(t, err)
	defer p.Close()

	stream, err := ioselect.Connect("tcp", addr, time.Second)
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Write([]byte("hello"))
	require.NoError(t, err)

	token, err := p.Register(stream, ioselect.Readable)
	require.NoError(t, err)

	events := ioselect.NewEventList(8)
	timeout := 2000
	n, err := p.Poll(events, &timeout)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, token, events.At(0).ID())

	buf := make([]byte, 16)
	n2, err := stream.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n2]))
}

func TestPollTimesOutWithZeroEvents(t *testing.T) {
	p, err := ioselect.New()
	require.NoError(t, err)
	defer p.Close()

	events := ioselect.NewEventList(4)
	timeout := 50
	n, err := p.Poll(events, &timeout)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, events.Len())
}

func TestCloseLoopInterruptsConcurrentPoll(t *testing.T) {
	p, err := ioselect.New()
	require.NoError(t, err)
	defer p.Close()

	reg := p.Registrator()

	var wg sync.WaitGroup
	wg.Add(1)
	var pollErr error
	go func() {
		defer wg.Done()
		events := ioselect.NewEventList(4)
		_, pollErr = p.Poll(events, nil)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, reg.CloseLoop())
	wg.Wait()

	assert.ErrorIs(t, pollErr, ioselect.ErrInterrupted)
}

func TestRegisterAfterCloseLoopFails(t *testing.T) {
	p, err := ioselect.New()
	require.NoError(t, err)
	defer p.Close()

	addr, stop := echoServer(t)
	defer stop()

	reg := p.Registrator()
	require.NoError(t, reg.CloseLoop())

	stream, err := ioselect.Connect("tcp", addr, time.Second)
	require.NoError(t, err)
	defer stream.Close()

	_, err = p.Register(stream, ioselect.Readable)
	assert.ErrorIs(t, err, ioselect.ErrInterrupted)

	assert.ErrorIs(t, reg.CloseLoop(), ioselect.ErrInterrupted)
}

func TestOneshotDeliversExactlyOnceUntilReRegistered(t *testing.T) {
	addr, stop := echoServer(t)
	defer stop()

	p, err := ioselect.New()
	require.NoError(t, err)
	defer p.Close()

	stream, err := ioselect.Connect("tcp", addr, time.Second)
	require.NoError(t, err)
	defer stream.Close()

	_, err = p.Register(stream, ioselect.Readable)
	require.NoError(t, err)

	_, err = stream.Write([]byte("ping"))
	require.NoError(t, err)

	events := ioselect.NewEventList(4)
	timeout := 2000
	n, err := p.Poll(events, &timeout)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	buf := make([]byte, 16)
	_, err = stream.Read(buf)
	require.NoError(t, err)

	// Without re-registering, a second write produces no event: the
	// oneshot watch was consumed by the first delivery.
	_, err = stream.Write([]byte("ping again"))
	require.NoError(t, err)

	events2 := ioselect.NewEventList(4)
	shortTimeout := 100
	n2, err := p.Poll(events2, &shortTimeout)
	require.NoError(t, err)
	assert.Equal(t, 0, n2)

	// Re-registering re-arms the watch and the pending data is
	// delivered.
	_, err = p.Register(stream, ioselect.Readable)
	require.NoError(t, err)

	events3 := ioselect.NewEventList(4)
	timeout3 := 2000
	n3, err := p.Poll(events3, &timeout3)
	require.NoError(t, err)
	assert.Equal(t, 1, n3)
}

func TestRegisterRejectsWritable(t *testing.T) {
	addr, stop := echoServer(t)
	defer stop()

	p, err := ioselect.New()
	require.NoError(t, err)
	defer p.Close()

	stream, err := ioselect.Connect("tcp", addr, time.Second)
	require.NoError(t, err)
	defer stream.Close()

	_, err = p.Register(stream, ioselect.Writable)
	assert.ErrorIs(t, err, ioselect.ErrUnimplemented)
}
