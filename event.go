package ioselect

import "github.com/cloudlink/ioselect/internal/ioselector"

// Event is one notification a Poll delivered. Its only observable
// surface is ID: no platform detail (epoll bits, kevent filter/flags,
// OVERLAPPED_ENTRY) crosses the public API.
type Event struct {
	ev ioselector.Event
}

// ID returns the Token correlating this event with its registration.
func (e Event) ID() Token {
	return e.ev.ID()
}

// EventList is a fixed-capacity, caller-owned vector of Events that
// Poll.Poll populates. Its capacity bounds how many events a single
// Poll call can report; Poll never grows it on your behalf.
type EventList struct {
	l *ioselector.EventList
}

// NewEventList allocates an EventList with room for capacity events.
func NewEventList(capacity int) *EventList {
	return &EventList{l: ioselector.NewEventList(capacity)}
}

// Cap reports the maximum number of events one Poll call can deliver
// into this list.
func (l *EventList) Cap() int {
	return l.l.Cap()
}

// Len reports how many events the most recent Poll call populated.
func (l *EventList) Len() int {
	return l.l.Len()
}

// At returns the event at index i of the most recent Poll call's
// results. It panics if i is out of range.
func (l *EventList) At(i int) Event {
	return Event{ev: l.l.At(i)}
}

// Grow replaces the list with a fresh one of the given capacity. Use it
// between Poll calls if you repeatedly observe Len() == Cap() and want
// to admit more events per wakeup.
func (l *EventList) Grow(capacity int) {
	l.l.Grow(capacity)
}
