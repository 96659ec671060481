package iopoll

import (
	"iter"
)

// Events is a reusable buffer of [Event] values, filled by [Poll.Poll].
//
// Each poll clears the buffer before waiting. The capacity bounds how many
// native records the kernel backends collect per poll, so a larger capacity
// means fewer polls under load. The poll_oneoff backend grows the buffer to
// its subscription count. The buffer never shrinks.
//
// Events is not safe for concurrent use.
type Events struct {
	events []Event
	// native is the backend's raw record buffer, reused across polls
	native nativeEvents
}

// NewEvents returns an empty buffer with room for capacity events.
func NewEvents(capacity int) *Events {
	if capacity < 0 {
		capacity = 0
	}
	return &Events{events: make([]Event, 0, capacity)}
}

// Len returns the number of events from the last poll.
func (x *Events) Len() int { return len(x.events) }

// Cap returns the capacity of the buffer.
func (x *Events) Cap() int { return cap(x.events) }

// IsEmpty reports whether the last poll produced no events.
func (x *Events) IsEmpty() bool { return len(x.events) == 0 }

// At returns the i-th event. It panics if i is out of range.
func (x *Events) At(i int) Event { return x.events[i] }

// All iterates over the events from the last poll, in delivery order.
func (x *Events) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, e := range x.events {
			if !yield(e) {
				return
			}
		}
	}
}

// Clear removes all events, keeping the capacity.
func (x *Events) Clear() {
	clear(x.events)
	x.events = x.events[:0]
}

// reserve ensures room for at least n events.
func (x *Events) reserve(n int) {
	if cap(x.events) >= n {
		return
	}
	events := make([]Event, len(x.events), n)
	copy(events, x.events)
	x.events = events
}

// nativeCap is the number of native records to request from the kernel.
func (x *Events) nativeCap() int {
	return max(cap(x.events), 1)
}

func (x *Events) push(e Event) {
	x.events = append(x.events, e)
}

// swapRemove removes the i-th event, moving the last event into its place.
func (x *Events) swapRemove(i int) {
	last := len(x.events) - 1
	x.events[i] = x.events[last]
	x.events[last] = Event{}
	x.events = x.events[:last]
}
