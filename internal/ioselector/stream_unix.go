// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

package ioselector

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/cloudlink/ioselect/internal/netutil"
	"github.com/cloudlink/ioselect/metrics"
)

// UnixStream is the readiness-platform TcpStream core: a connected
// socket kept in non-blocking mode so it can be registered with an
// epoll/kqueue Selector, and flipped to blocking only for the duration
// of a single Read (see Read for why it is never flipped back).
type UnixStream struct {
	conn  net.Conn
	fd    int
	laddr net.Addr
	raddr net.Addr
}

// DialTCP connects to address within timeout and returns a UnixStream
// ready to register with a Selector.
func DialTCP(network, address string, timeout time.Duration) (*UnixStream, error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, fmt.Errorf("ioselector: unknown network %s", network)
	}
	c, err := net.DialTimeout(network, address, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial network %s address %s: %w", network, address, err)
	}
	fd, err := netutil.GetFD(c)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("get fd: %w", err)
	}
	if err := netutil.SetNonblock(fd, true); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("set nonblocking: %w", err)
	}
	return &UnixStream{conn: c, fd: fd, laddr: c.LocalAddr(), raddr: c.RemoteAddr()}, nil
}

// Fd returns the raw file descriptor, used by Selector.Register.
func (s *UnixStream) Fd() int {
	return s.fd
}

// LocalAddr returns the local network address.
func (s *UnixStream) LocalAddr() net.Addr {
	return s.laddr
}

// RemoteAddr returns the remote network address.
func (s *UnixStream) RemoteAddr() net.Addr {
	return s.raddr
}

// Read blocks until at least one byte is available and returns up to
// len(p) bytes, as io.Reader requires. It does so by flipping the
// socket to blocking mode before reading, and the fd is deliberately
// NOT restored to non-blocking afterward: it stays blocking from the
// first Read on. This is safe for the epoll/
// kqueue oneshot model this package uses, because a caller MUST
// Register again before the next notification arrives regardless of
// the fd's blocking mode, and re-registering re-arms the watch
// correctly either way. Callers must therefore read exactly once per
// delivered event before re-registering, matching the oneshot contract.
func (s *UnixStream) Read(p []byte) (int, error) {
	if err := netutil.SetNonblock(s.fd, false); err != nil {
		return 0, err
	}
	n, err := s.conn.Read(p)
	metrics.Add(metrics.StreamReadCalls, 1)
	if n > 0 {
		metrics.Add(metrics.StreamReadBytes, uint64(n))
	}
	return n, err
}

// ReadVectored reads into multiple buffers in one call via readv,
// falling back to Read semantics (blocking mode switch) beforehand.
func (s *UnixStream) ReadVectored(bufs [][]byte) (int, error) {
	if err := netutil.SetNonblock(s.fd, false); err != nil {
		return 0, err
	}
	iovs := make([][]byte, 0, len(bufs))
	for _, b := range bufs {
		if len(b) > 0 {
			iovs = append(iovs, b)
		}
	}
	if len(iovs) == 0 {
		return 0, nil
	}
	n, err := unix.Readv(s.fd, iovs)
	metrics.Add(metrics.StreamReadCalls, 1)
	if n > 0 {
		metrics.Add(metrics.StreamReadBytes, uint64(n))
	}
	return n, err
}

// Write writes p to the stream. The stream's non-blocking mode (set at
// dial time, and whatever Read last left it as) governs whether this
// call can block; callers that need it to never block should avoid
// mixing Read and Write on the same stream without coordinating modes.
func (s *UnixStream) Write(p []byte) (int, error) {
	n, err := s.conn.Write(p)
	metrics.Add(metrics.StreamWriteCalls, 1)
	if n > 0 {
		metrics.Add(metrics.StreamWriteBytes, uint64(n))
	}
	return n, err
}

// Flush is a no-op on readiness platforms: Write already delivers
// directly to the kernel socket buffer.
func (s *UnixStream) Flush() error {
	return nil
}

// Close implements Stream.
func (s *UnixStream) Close() error {
	return s.conn.Close()
}
