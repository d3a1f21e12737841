//go:build windows
// +build windows

package ioselect

import (
	"net"
	"time"

	"golang.org/x/sys/windows"

	"github.com/cloudlink/ioselect/internal/ioselector"
)

// TcpStream is a connected TCP socket ready to register with a Poll. On
// Windows, Register issues the actual recv: by the time an Event
// surfaces this stream's Token, the bytes are already sitting in an
// internal buffer for Read to copy out.
type TcpStream struct {
	s *ioselector.WindowsStream
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

// Read copies up to len(p) bytes out of the most recent completion's
// buffer. A short read (p smaller than the delivered completion)
// resumes correctly on the next Read: the cursor always advances by
// exactly what was copied.
func (t *TcpStream) Read(p []byte) (int, error) {
	return t.s.Read(p)
}

// ReadVectored is not supported on the completion-based Windows path;
// it always fails with ErrUnimplemented.
func (t *TcpStream) ReadVectored(bufs [][]byte) (int, error) {
	return 0, ErrUnimplemented
}

// Write writes p to the stream.
func (t *TcpStream) Write(p []byte) (int, error) {
	return t.s.Write(p)
}

// Flush is a no-op: Write already delivers directly to the kernel.
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

// Handle returns the raw Windows handle backing the stream.
func (t *TcpStream) Handle() windows.Handle {
	return t.s.Handle()
}

func (t *TcpStream) raw() ioselector.Stream {
	return t.s
}
