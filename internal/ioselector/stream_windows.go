// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build windows
// +build windows

package ioselector

import (
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sys/windows"

	"github.com/cloudlink/ioselect/internal/buffer"
	"github.com/cloudlink/ioselect/internal/locker"
	"github.com/cloudlink/ioselect/internal/netutil"
	"github.com/cloudlink/ioselect/metrics"
)

// defaultRecvBuffer is the fixed capacity lent to the kernel for every
// WSARecv this package issues.
const defaultRecvBuffer = 64 * 1024

// WindowsStream is the completion-platform TcpStream core. Unlike the
// readiness-platform UnixStream, its Read never touches the kernel
// directly: the bytes are already sitting in rbuf by the time a caller
// can observe the event that unblocked Select, because the Selector's
// Register call is what issues the WSARecv.
type WindowsStream struct {
	conn       net.Conn
	handle     windows.Handle
	laddr      net.Addr
	raddr      net.Addr
	rbuf       *buffer.FixedReadBuffer
	associated atomic.Bool
	mu         locker.Locker
	pending    *operation
}

// DialTCP connects to address within timeout and returns a WindowsStream
// ready to register with an IOCP Selector.
func DialTCP(network, address string, timeout time.Duration) (*WindowsStream, error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, fmt.Errorf("ioselector: unknown network %s", network)
	}
	c, err := net.DialTimeout(network, address, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial network %s address %s: %w", network, address, err)
	}
	h, err := netutil.GetHandle(c)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("get handle: %w", err)
	}
	return &WindowsStream{
		conn:   c,
		handle: h,
		laddr:  c.LocalAddr(),
		raddr:  c.RemoteAddr(),
		rbuf:   buffer.New(defaultRecvBuffer),
	}, nil
}

// Handle returns the raw Windows handle, used by Selector.Register to
// associate the stream with the IOCP port.
func (s *WindowsStream) Handle() windows.Handle {
	return s.handle
}

// LocalAddr returns the local network address.
func (s *WindowsStream) LocalAddr() net.Addr {
	return s.laddr
}

// RemoteAddr returns the remote network address.
func (s *WindowsStream) RemoteAddr() net.Addr {
	return s.raddr
}

// onComplete is invoked by Select once a WSARecv issued against op
// completes, recording how many bytes the kernel delivered into rbuf
// ahead of the caller's next Read.
func (s *WindowsStream) onComplete(op *operation, n uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == 0 {
		s.rbuf.Reset()
		return
	}
	s.rbuf.Fill(int(n))
	metrics.Add(metrics.StreamReadBytes, uint64(n))
}

// Read copies min(len(p), unread bytes) out of the completion buffer
// and advances the read cursor by exactly what was copied, so a short
// read (p smaller than the delivered completion) is resumed correctly
// by the next Read rather than dropping the remainder.
func (s *WindowsStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.Add(metrics.StreamReadCalls, 1)
	if s.rbuf.LenRead() == 0 {
		return 0, io.EOF
	}
	n, err := s.rbuf.Read(p)
	if err == nil && n < len(p) {
		metrics.Add(metrics.StreamShortReads, 1)
	}
	return n, err
}

// Write writes p synchronously; this package only drives the read path
// through IOCP completions, matching the spec's read-only Interests
// surface (Writable is unimplemented on every platform).
func (s *WindowsStream) Write(p []byte) (int, error) {
	n, err := s.conn.Write(p)
	metrics.Add(metrics.StreamWriteCalls, 1)
	if n > 0 {
		metrics.Add(metrics.StreamWriteBytes, uint64(n))
	}
	return n, err
}

// Flush is a no-op: Write already delivers directly to the kernel.
func (s *WindowsStream) Flush() error {
	return nil
}

// Close implements Stream.
func (s *WindowsStream) Close() error {
	return s.conn.Close()
}
