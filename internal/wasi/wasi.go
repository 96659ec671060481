// Package wasi models the WASI preview1 poll_oneoff call: a list of
// subscriptions in, a list of events out.
//
// On wasip1, [PollOneoff] calls the host import. On unix hosts it is
// emulated over poll(2), which allows the same selector to be built and
// tested natively.
package wasi

// Userdata is copied from a subscription to the events it produces.
type Userdata = uint64

// EventType is the subscription / event kind.
type EventType uint8

const (
	// EventTypeClock fires when a clock timeout elapses.
	EventTypeClock EventType = iota
	// EventTypeFdRead fires when a descriptor has data to read, or hung up.
	EventTypeFdRead
	// EventTypeFdWrite fires when a descriptor can be written.
	EventTypeFdWrite
)

func (t EventType) String() string {
	switch t {
	case EventTypeClock:
		return `clock`
	case EventTypeFdRead:
		return `fd_read`
	case EventTypeFdWrite:
		return `fd_write`
	default:
		return `unknown`
	}
}

// ClockID identifies a clock.
type ClockID uint32

const (
	ClockIDRealtime ClockID = iota
	ClockIDMonotonic
	ClockIDProcessCPUTime
	ClockIDThreadCPUTime
)

// SubClockFlags modify a clock subscription.
type SubClockFlags uint16

// SubClockFlagsAbstime interprets the timeout as an absolute time, rather
// than relative to the call.
const SubClockFlagsAbstime SubClockFlags = 1

// EventRWFlags annotate fd_read and fd_write events.
type EventRWFlags uint16

// EventRWFlagsHangup is set when the peer hung up.
const EventRWFlagsHangup EventRWFlags = 1

// SubscriptionClock is the payload of a clock subscription. Times are in
// nanoseconds.
type SubscriptionClock struct {
	Timeout   uint64
	Precision uint64
	ID        ClockID
	Flags     SubClockFlags
}

// Subscription is a tagged union, the payload valid for its [EventType]
// is available through the matching accessor.
//
// The zero value is a relative realtime clock subscription, with a zero
// timeout.
type Subscription struct {
	clock    SubscriptionClock
	userdata Userdata
	fd       uint32
	typ      EventType
}

// NewClockSubscription subscribes to a clock timeout.
func NewClockSubscription(userdata Userdata, clock SubscriptionClock) Subscription {
	return Subscription{userdata: userdata, typ: EventTypeClock, clock: clock}
}

// NewFdReadSubscription subscribes to fd becoming readable.
func NewFdReadSubscription(userdata Userdata, fd uint32) Subscription {
	return Subscription{userdata: userdata, typ: EventTypeFdRead, fd: fd}
}

// NewFdWriteSubscription subscribes to fd becoming writable.
func NewFdWriteSubscription(userdata Userdata, fd uint32) Subscription {
	return Subscription{userdata: userdata, typ: EventTypeFdWrite, fd: fd}
}

func (s Subscription) Userdata() Userdata { return s.userdata }

func (s Subscription) Type() EventType { return s.typ }

// Fd returns the descriptor of an fd_read or fd_write subscription.
func (s Subscription) Fd() (uint32, bool) {
	if s.typ != EventTypeFdRead && s.typ != EventTypeFdWrite {
		return 0, false
	}
	return s.fd, true
}

// Clock returns the payload of a clock subscription.
func (s Subscription) Clock() (SubscriptionClock, bool) {
	if s.typ != EventTypeClock {
		return SubscriptionClock{}, false
	}
	return s.clock, true
}

// EventFdReadWrite is the payload of fd_read and fd_write events.
type EventFdReadWrite struct {
	// NBytes is the number of bytes available, for fd_read, if known.
	NBytes uint64
	Flags  EventRWFlags
}

// Event is produced by [PollOneoff] for each subscription that fired.
type Event struct {
	FdReadWrite EventFdReadWrite
	Userdata    Userdata
	// Error is non-zero if the subscription failed.
	Error Errno
	Type  EventType
}

// Hangup reports whether the peer hung up, for fd_read and fd_write events.
func (e Event) Hangup() bool {
	return e.FdReadWrite.Flags&EventRWFlagsHangup != 0
}
