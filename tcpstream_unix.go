//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

package ioselect

import (
	"net"
	"time"

	"github.com/cloudlink/ioselect/internal/ioselector"
)

// TcpStream is a connected TCP socket ready to register with a Poll.
// On readiness platforms (epoll/kqueue) it is kept non-blocking so it
// can be armed for oneshot notifications; see Read for the blocking-
// mode contract that implies for callers.
type TcpStream struct {
	s *ioselector.UnixStream
}

// Connect dials address over network ("tcp", "tcp4", or "tcp6") within
// timeout and returns a TcpStream.
func Connect(network, address string, timeout time.Duration) (*TcpStream, error) {
	s, err := ioselector.DialTCP(network, address, timeout)
	if err != nil {
		return nil, err
	}
	return &TcpStream{s: s}, nil
}

// Read blocks until at least one byte is available and returns up to
// len(p) bytes. It flips the socket to blocking mode for the call and
// does NOT flip it back afterward: the fd stays in whatever mode the
// last Read left it in. Re-registering with a Registrator re-arms the
// watch correctly regardless of the fd's blocking mode, so callers must
// read exactly once per delivered event before registering again.
func (t *TcpStream) Read(p []byte) (int, error) {
	return t.s.Read(p)
}

// ReadVectored reads into multiple buffers in one call.
func (t *TcpStream) ReadVectored(bufs [][]byte) (int, error) {
	return t.s.ReadVectored(bufs)
}

// Write writes p to the stream.
func (t *TcpStream) Write(p []byte) (int, error) {
	return t.s.Write(p)
}

// Flush is a no-op on readiness platforms.
func (t *TcpStream) Flush() error {
	return t.s.Flush()
}

// Close closes the underlying socket.
func (t *TcpStream) Close() error {
	return t.s.Close()
}

// LocalAddr returns the local network address.
func (t *TcpStream) LocalAddr() net.Addr {
	return t.s.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (t *TcpStream) RemoteAddr() net.Addr {
	return t.s.RemoteAddr()
}

// Fd returns the raw file descriptor backing the stream.
func (t *TcpStream) Fd() int {
	return t.s.Fd()
}

func (t *TcpStream) raw() ioselector.Stream {
	return t.s
}
