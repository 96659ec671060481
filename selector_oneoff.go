//go:build unix || wasip1

package iopoll

import (
	"math"
	"sync"
	"time"

	"github.com/joeycumines/go-iopoll/internal/wasi"
)

// timeoutToken is the userdata of the clock subscription that implements the
// poll timeout. It can't be registered.
const timeoutToken wasi.Userdata = math.MaxUint64

// oneoffSelector multiplexes using poll_oneoff (WASI).
//
// poll_oneoff has no persistent state, so the selector keeps the subscription
// list, and submits all of it on every wait, which makes registrations
// level-triggered. The lock is held for the whole wait. Registering from
// another goroutine blocks until the wait returns, and nothing can interrupt
// it early.
//
// Registrations are also tracked per descriptor, including those whose
// interest has no fd_read or fd_write equivalent, and so no subscription.
type oneoffSelector struct { // betteralign:ignore
	mu            sync.Mutex
	subscriptions []wasi.Subscription
	// fds maps registered descriptors to the file they referred to
	fds map[uint32]fileID
	// native receives the raw events, guarded by mu
	native []wasi.Event
	sid    uint64
	poll   func(in []wasi.Subscription, out []wasi.Event) (int, error)
}

func newOneoffSelector() *oneoffSelector {
	return &oneoffSelector{
		fds:  make(map[uint32]fileID),
		sid:  nextSelectorID(),
		poll: wasi.PollOneoff,
	}
}

func (s *oneoffSelector) id() uint64 { return s.sid }

func (s *oneoffSelector) capabilities() Capabilities {
	return Capabilities{}
}

func (s *oneoffSelector) register(h Handle, token Token, interest Interest) error {
	if wasi.Userdata(token) == timeoutToken {
		return ErrReservedToken
	}
	fd := uint32(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	if file, ok := s.fds[fd]; ok {
		if !file.replacedSince(int(fd)) {
			return usageError(ErrAlreadyRegistered, `poll_oneoff subscribe`, nil)
		}
		// closed without deregistering, and the number reused
		s.unsubscribe(fd)
	}
	s.fds[fd] = statFileID(int(fd))
	if interest.IsWritable() {
		s.subscriptions = append(s.subscriptions, wasi.NewFdWriteSubscription(wasi.Userdata(token), fd))
	}
	if interest.IsReadable() {
		s.subscriptions = append(s.subscriptions, wasi.NewFdReadSubscription(wasi.Userdata(token), fd))
	}
	return nil
}

// reregister is deregister then register, and is not atomic: a concurrent
// wait may observe neither registration.
func (s *oneoffSelector) reregister(h Handle, token Token, interest Interest) error {
	if wasi.Userdata(token) == timeoutToken {
		return ErrReservedToken
	}
	if err := s.deregister(h); err != nil {
		return err
	}
	return s.register(h, token, interest)
}

func (s *oneoffSelector) deregister(h Handle) error {
	fd := uint32(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fds[fd]; !ok {
		return usageError(ErrNotRegistered, `poll_oneoff unsubscribe`, nil)
	}
	s.unsubscribe(fd)
	return nil
}

// unsubscribe swap-removes every subscription for fd. Must hold mu.
func (s *oneoffSelector) unsubscribe(fd uint32) {
	delete(s.fds, fd)
	for i := 0; i < len(s.subscriptions); {
		if v, ok := s.subscriptions[i].Fd(); ok && v == fd {
			last := len(s.subscriptions) - 1
			s.subscriptions[i] = s.subscriptions[last]
			s.subscriptions[last] = wasi.Subscription{}
			s.subscriptions = s.subscriptions[:last]
			continue
		}
		i++
	}
}

func (s *oneoffSelector) selectEvents(events *Events, timeout time.Duration) error {
	events.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()

	if timeout >= 0 {
		s.subscriptions = append(s.subscriptions, wasi.NewClockSubscription(timeoutToken, wasi.SubscriptionClock{
			ID:        wasi.ClockIDMonotonic,
			Timeout:   uint64(timeout),
			Precision: uint64(time.Millisecond),
		}))
	}

	length := len(s.subscriptions)
	events.reserve(length)
	if cap(s.native) < length {
		s.native = make([]wasi.Event, length)
	}
	native := s.native[:length]

	var (
		n   int
		err error
	)
	if length != 0 {
		n, err = s.poll(s.subscriptions, native)
	} else {
		// nothing to wait on, and no timeout to end the wait
		err = wasi.EINVAL
	}

	if timeout >= 0 {
		last := len(s.subscriptions) - 1
		s.subscriptions[last] = wasi.Subscription{}
		s.subscriptions = s.subscriptions[:last]
	}

	if err != nil {
		return wrapError(`poll_oneoff`, err)
	}

	native = native[:n]
	for i := range native {
		if native[i].Type == wasi.EventTypeClock && native[i].Userdata == timeoutToken {
			native[i] = native[len(native)-1]
			native = native[:len(native)-1]
			break
		}
	}

	for _, ev := range native {
		events.push(Event{token: Token(ev.Userdata), flags: oneoffToFlags(ev)})
	}

	for _, ev := range native {
		if ev.Error != wasi.ESUCCESS {
			return &SubscriptionError{Token: Token(ev.Userdata), Err: ev.Error}
		}
	}

	return nil
}

func (s *oneoffSelector) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.subscriptions)
	s.subscriptions = nil
	clear(s.fds)
	return nil
}

func oneoffToFlags(ev wasi.Event) eventFlags {
	var flags eventFlags
	switch ev.Type {
	case wasi.EventTypeFdRead:
		flags |= flagReadable
		if ev.Hangup() {
			flags |= flagReadClosed
		}
	case wasi.EventTypeFdWrite:
		flags |= flagWritable
		if ev.Hangup() {
			flags |= flagWriteClosed
		}
	}
	return flags
}
