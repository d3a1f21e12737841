package ioselector

import (
	"go.uber.org/atomic"

	"github.com/cloudlink/ioselect/log"
	"github.com/cloudlink/ioselect/metrics"
)

// Registrator is the capability to register streams against, and
// cancel, one Selector. It holds a direct reference to that Selector
// (the Go analogue of the spec's "copy of the queue handle": a Selector
// is garbage-collected, so a live interface reference is both cheaper
// and safer than duplicating a raw descriptor) plus the poll_dead flag
// shared with the owning Poll, so CloseLoop is safe to call from any
// goroutine concurrently with Select.
type Registrator struct {
	sel  Selector
	dead *atomic.Bool
}

// NewRegistrator builds a Registrator over sel, sharing the poll_dead
// flag dead with the Poll that owns sel.
func NewRegistrator(sel Selector, dead *atomic.Bool) *Registrator {
	return &Registrator{sel: sel, dead: dead}
}

// Register arms stream for one oneshot notification tagged with token.
// It fails with ErrInterrupted once CloseLoop has been called.
func (r *Registrator) Register(stream Stream, token Token, interests Interests) error {
	if r.dead.Load() {
		return ErrInterrupted
	}
	metrics.Add(metrics.RegisterCalls, 1)
	if err := r.sel.Register(stream, token, interests); err != nil {
		metrics.Add(metrics.RegisterFails, 1)
		log.Debugf("register err: %v\n", err)
		return err
	}
	return nil
}

// CloseLoop marks the Selector dead and wakes any in-progress or future
// Select call so it returns promptly. Only the first caller across any
// number of concurrent goroutines performs the wake; later calls are
// no-ops that report ErrInterrupted, since the loop is already closing.
func (r *Registrator) CloseLoop() error {
	if !r.dead.CAS(false, true) {
		return ErrInterrupted
	}
	metrics.Add(metrics.CloseLoopCalls, 1)
	if err := r.sel.Wake(); err != nil {
		log.Debugf("wake err: %v\n", err)
		return err
	}
	return nil
}

// Dead reports whether CloseLoop has been called.
func (r *Registrator) Dead() bool {
	return r.dead.Load()
}
