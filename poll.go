package ioselect

import (
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/cloudlink/ioselect/internal/ioselector"
)

// Poll is the single-owner façade over one platform Selector: epoll on
// Linux, kqueue on BSD/Darwin, IOCP on Windows. Create one with New,
// share its Registrator with whatever goroutines need to register
// streams or cancel the loop, and drive it by calling Poll in a loop
// from a single goroutine.
type Poll struct {
	sel  ioselector.Selector
	dead *atomic.Bool
}

// New creates a Poll backed by the current platform's Selector.
func New() (*Poll, error) {
	sel, err := ioselector.New()
	if err != nil {
		return nil, err
	}
	return &Poll{sel: sel, dead: atomic.NewBool(false)}, nil
}

// Registrator returns the capability to register streams against, and
// cancel, this Poll.
func (p *Poll) Registrator() *Registrator {
	return &Registrator{r: ioselector.NewRegistrator(p.sel, p.dead)}
}

// Register allocates a fresh Token and registers stream for one oneshot
// notification tagged with it, returning the Token so the caller can
// correlate it with whatever Event.ID later reports.
func (p *Poll) Register(stream *TcpStream, interests Interests) (Token, error) {
	token := ioselector.NextToken()
	return token, p.Registrator().Register(stream, token, interests)
}

// RegisterWithID registers stream using a caller-supplied token instead
// of minting a fresh one, for callers that manage their own correlation
// identifiers (e.g. reusing a connection's own ID as its token). It
// returns token back unchanged on success, for symmetry with Register.
func (p *Poll) RegisterWithID(stream *TcpStream, interests Interests, token Token) (Token, error) {
	return token, p.Registrator().Register(stream, token, interests)
}

// Poll blocks until at least one event is ready, *timeoutMS elapses, or
// the Poll is closed, then populates events with however many results
// arrived (bounded by events.Cap()) and returns that count. A nil
// timeoutMS blocks indefinitely; a negative *timeoutMS is clamped to 0
// (an immediate, non-blocking check) rather than treated as infinite.
func (p *Poll) Poll(events *EventList, timeoutMS *int) (int, error) {
	if p.dead.Load() {
		return 0, errors.Wrap(ErrInterrupted, "Poll closed.")
	}
	ms := -1
	if timeoutMS != nil {
		ms = *timeoutMS
		if ms < 0 {
			ms = 0
		}
	}
	for {
		err := p.sel.Select(events.l, ms)
		if err == nil {
			break
		}
		if err == ioselector.ErrInterrupted {
			continue
		}
		return 0, err
	}
	if p.dead.Load() {
		return 0, errors.Wrap(ErrInterrupted, "Poll closed.")
	}
	return events.Len(), nil
}

// Close releases the underlying Selector's OS resources. It does not
// close any streams registered against it. A close failure panics: the
// Selector's check for an in-flight panic only sees one when the
// Selector's own Close is the deferred call, so a close failure reached
// through this method panics even while another panic is unwinding.
func (p *Poll) Close() error {
	return p.sel.Close()
}
