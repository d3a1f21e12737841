package ioselect

import "github.com/cloudlink/ioselect/internal/ioselector"

// Registrator is the capability to register TcpStreams against, and to
// cancel, one Poll. Unlike Poll itself, a Registrator is meant to be
// handed to and shared by any number of goroutines: CloseLoop is safe
// to call concurrently with Poll.Poll running on another goroutine.
type Registrator struct {
	r *ioselector.Registrator
}

// Register arms stream for one oneshot notification tagged with token.
// Re-registering an already-registered stream re-arms it; this is the
// only way to receive a second notification after the first fires,
// since every registration is consumed by exactly one delivered event.
func (r *Registrator) Register(stream *TcpStream, token Token, interests Interests) error {
	return r.r.Register(stream.raw(), token, interests)
}

// CloseLoop marks the owning Poll dead and wakes its in-progress or
// next Poll.Poll call so it returns promptly with ErrInterrupted. Only
// the first caller across any number of concurrent goroutines performs
// the wake; later calls report ErrInterrupted immediately.
func (r *Registrator) CloseLoop() error {
	return r.r.CloseLoop()
}
