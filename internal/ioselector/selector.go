package ioselector

// Stream is what a Selector needs from a connection in order to
// register it for readiness or completion notifications. Each platform
// implements its own concrete stream type (stream_unix.go,
// stream_windows.go) satisfying this interface.
type Stream interface {
	// Close releases whatever OS resources the stream owns.
	Close() error
}

// Selector is the one contract every platform notification backend
// (epoll, kqueue, IOCP) satisfies. A Selector is single-owner: nothing
// in this core load-balances registrations across more than one
// Selector instance.
type Selector interface {
	// Select blocks until at least one event is ready, the timeout
	// (in milliseconds; -1 means block indefinitely) elapses, or the
	// wait is interrupted, then populates events with however many
	// results arrived (bounded by events.Cap()). A timeout elapsing
	// with zero results is not an error: Select returns nil with
	// events.Len() == 0.
	Select(events *EventList, timeoutMS int) error

	// Register arms stream for one readiness/completion notification
	// tagged with token, consuming the given interests. A Register
	// call on a stream already registered re-arms it (oneshot
	// semantics: every notification must be followed by a fresh
	// Register before another will be delivered).
	Register(stream Stream, token Token, interests Interests) error

	// Wake interrupts a Select call in progress (or the next one) by
	// posting a synthetic, discardable event. It is the mechanism
	// behind Registrator.CloseLoop's cross-goroutine cancellation.
	Wake() error

	// Close releases the selector's OS resources. It does not close
	// registered streams. A close failure panics, to surface a
	// descriptor leak loudly rather than let it pass silently, unless
	// this Close is itself the deferred call running during another
	// panic, in which case it returns the error instead. A Close called
	// from inside some other deferred function panics on failure.
	Close() error
}
