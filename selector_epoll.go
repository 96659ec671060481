//go:build linux && !iopoll_oneoff

package iopoll

import (
	"time"

	"golang.org/x/sys/unix"
)

type (
	selector     = epollSelector
	nativeEvents = []unix.EpollEvent
)

// epollET is EPOLLET as a uint32, the unix constant is a signed int on some
// architectures.
const epollET uint32 = 1 << 31

// epollSelector multiplexes using epoll (Linux).
//
// Registrations are level-triggered, epoll keeps them until EPOLL_CTL_DEL,
// and its own locking makes every method safe while epoll_wait is blocked.
type epollSelector struct {
	epfd int
	sid  uint64
}

func newSelector() (*epollSelector, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollSelector{epfd: epfd, sid: nextSelectorID()}, nil
}

func (s *epollSelector) id() uint64 { return s.sid }

func (s *epollSelector) capabilities() Capabilities {
	return Capabilities{ConcurrentRegistration: true, Waker: true}
}

func (s *epollSelector) register(h Handle, token Token, interest Interest) error {
	return s.add(h, token, interestToEpoll(interest))
}

// registerEdge registers a waker handle, which is never drained.
func (s *epollSelector) registerEdge(h Handle, token Token) error {
	return s.add(h, token, unix.EPOLLIN|epollET)
}

func (s *epollSelector) add(h Handle, token Token, events uint32) error {
	ev := unix.EpollEvent{Events: events}
	setEpollToken(&ev, token)
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, int(h), &ev); err != nil {
		if err == unix.EEXIST {
			return usageError(ErrAlreadyRegistered, `epoll_ctl add`, err)
		}
		return wrapError(`epoll_ctl add`, err)
	}
	return nil
}

func (s *epollSelector) reregister(h Handle, token Token, interest Interest) error {
	ev := unix.EpollEvent{Events: interestToEpoll(interest)}
	setEpollToken(&ev, token)
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_MOD, int(h), &ev); err != nil {
		if err == unix.ENOENT {
			return usageError(ErrNotRegistered, `epoll_ctl mod`, err)
		}
		return wrapError(`epoll_ctl mod`, err)
	}
	return nil
}

func (s *epollSelector) deregister(h Handle) error {
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, int(h), nil); err != nil {
		if err == unix.ENOENT {
			return usageError(ErrNotRegistered, `epoll_ctl del`, err)
		}
		return wrapError(`epoll_ctl del`, err)
	}
	return nil
}

func (s *epollSelector) selectEvents(events *Events, timeout time.Duration) error {
	events.Clear()
	n := events.nativeCap()
	if cap(events.native) < n {
		events.native = make([]unix.EpollEvent, n)
	}
	native := events.native[:n]
	count, err := unix.EpollWait(s.epfd, native, timeoutMillis(timeout))
	if err != nil {
		return wrapError(`epoll_wait`, err)
	}
	for i := range native[:count] {
		events.push(Event{
			token: epollToken(&native[i]),
			flags: epollToFlags(native[i].Events),
		})
	}
	return nil
}

func (s *epollSelector) close() error {
	return unix.Close(s.epfd)
}

func interestToEpoll(interest Interest) uint32 {
	var events uint32
	if interest.IsReadable() {
		events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest.IsWritable() {
		events |= unix.EPOLLOUT
	}
	if interest.IsPriority() {
		events |= unix.EPOLLPRI
	}
	return events
}

func epollToFlags(events uint32) eventFlags {
	var flags eventFlags
	if events&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
		flags |= flagReadable
	}
	if events&unix.EPOLLOUT != 0 {
		flags |= flagWritable
	}
	if events&unix.EPOLLERR != 0 {
		flags |= flagError
	}
	if events&unix.EPOLLPRI != 0 {
		flags |= flagPriority
	}
	// EPOLLHUP alone is a full close, EPOLLRDHUP only counts alongside
	// EPOLLIN, which it always accompanies once the peer shut down writing.
	if events&unix.EPOLLHUP != 0 || (events&unix.EPOLLIN != 0 && events&unix.EPOLLRDHUP != 0) {
		flags |= flagReadClosed
	}
	if events&unix.EPOLLHUP != 0 ||
		(events&unix.EPOLLOUT != 0 && events&unix.EPOLLERR != 0) ||
		events == unix.EPOLLERR {
		flags |= flagWriteClosed
	}
	return flags
}

// The token is split across the epoll_data union, as seen by x/sys/unix.
func setEpollToken(ev *unix.EpollEvent, token Token) {
	ev.Fd = int32(uint32(token))
	ev.Pad = int32(uint32(token >> 32))
}

func epollToken(ev *unix.EpollEvent) Token {
	return Token(uint32(ev.Fd)) | Token(uint32(ev.Pad))<<32
}
