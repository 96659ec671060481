//go:build (darwin || freebsd || netbsd || openbsd || dragonfly) && !iopoll_oneoff

package iopoll

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

type (
	selector     = kqueueSelector
	nativeEvents = []unix.Kevent_t
)

type kqueueRegistration struct {
	file     fileID
	token    Token
	interest Interest
	edge     bool
}

// kqueueSelector multiplexes using kqueue (BSD, macOS).
//
// The kernel keys filters by (ident, filter), and has no room for a 64-bit
// token on every platform, so tokens are tracked per descriptor. The map is
// only read while translating events, never across the blocking wait.
//
// Closing a descriptor drops its filters but not its map entry, which is
// replaced by the next registration of the same descriptor number.
type kqueueSelector struct { // betteralign:ignore
	kq  int
	sid uint64
	mu  sync.RWMutex
	fds map[int]kqueueRegistration
	// wakerToken is the token of an EVFILT_USER waker, if any
	wakerToken atomic.Uint64
}

func newSelector() (*kqueueSelector, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)
	return &kqueueSelector{
		kq:  kq,
		sid: nextSelectorID(),
		fds: make(map[int]kqueueRegistration),
	}, nil
}

func (s *kqueueSelector) id() uint64 { return s.sid }

func (s *kqueueSelector) capabilities() Capabilities {
	return Capabilities{ConcurrentRegistration: true, Waker: true}
}

func (s *kqueueSelector) register(h Handle, token Token, interest Interest) error {
	return s.add(h, kqueueRegistration{token: token, interest: interest, file: statFileID(int(h))})
}

// registerEdge registers a waker handle for reading, with EV_CLEAR, so it is
// reported once per write and never needs draining.
func (s *kqueueSelector) registerEdge(h Handle, token Token) error {
	return s.add(h, kqueueRegistration{token: token, interest: Readable, edge: true, file: statFileID(int(h))})
}

func (s *kqueueSelector) add(h Handle, reg kqueueRegistration) error {
	fd := int(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.fds[fd]; ok {
		if !s.stale(fd, prev) {
			return usageError(ErrAlreadyRegistered, `kevent add`, nil)
		}
		delete(s.fds, fd)
	}
	if err := s.apply(kqueueChanges(fd, kqueueFilters(reg.interest), kqueueAddFlags(reg.edge))); err != nil {
		// roll back whichever filters made it in
		_ = s.apply(kqueueChanges(fd, kqueueFilters(reg.interest), unix.EV_DELETE))
		return wrapError(`kevent add`, err)
	}
	s.fds[fd] = reg
	return nil
}

func (s *kqueueSelector) reregister(h Handle, token Token, interest Interest) error {
	fd := int(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.fds[fd]
	if !ok {
		return usageError(ErrNotRegistered, `kevent modify`, nil)
	}
	if err := s.apply(kqueueChanges(fd, kqueueFilters(interest), kqueueAddFlags(reg.edge))); err != nil {
		return wrapError(`kevent modify`, err)
	}
	if dropped := kqueueFilters(reg.interest) &^ kqueueFilters(interest); dropped != 0 {
		// ENOENT is fine, the filter may never have been added
		_ = s.apply(kqueueChanges(fd, dropped, unix.EV_DELETE))
	}
	reg.token, reg.interest = token, interest
	s.fds[fd] = reg
	return nil
}

func (s *kqueueSelector) deregister(h Handle) error {
	fd := int(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.fds[fd]
	if !ok {
		return usageError(ErrNotRegistered, `kevent delete`, nil)
	}
	delete(s.fds, fd)
	// the descriptor may already be closed, which removes its filters
	_ = s.apply(kqueueChanges(fd, kqueueFilters(reg.interest), unix.EV_DELETE))
	return nil
}

// stale reports whether the descriptor of reg was closed, without being
// deregistered, since reg was added. Must hold mu.
func (s *kqueueSelector) stale(fd int, reg kqueueRegistration) bool {
	if filters := kqueueFilters(reg.interest); filters != 0 {
		// enabling is a no-op for live filters, the kernel removed them if
		// the descriptor was closed
		switch err := s.apply(kqueueChanges(fd, filters, unix.EV_ENABLE)); err {
		case nil:
			return false
		case unix.ENOENT, unix.EBADF:
			return true
		}
	}
	return reg.file.replacedSince(fd)
}

func (s *kqueueSelector) apply(changes []unix.Kevent_t) error {
	if len(changes) == 0 {
		return nil
	}
	for {
		_, err := unix.Kevent(s.kq, changes, nil, nil)
		if err != unix.EINTR {
			return err
		}
	}
}

func (s *kqueueSelector) selectEvents(events *Events, timeout time.Duration) error {
	events.Clear()
	n := events.nativeCap()
	if cap(events.native) < n {
		events.native = make([]unix.Kevent_t, n)
	}
	native := events.native[:n]
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(int64(timeout))
		ts = &t
	}
	count, err := unix.Kevent(s.kq, nil, native, ts)
	if err != nil {
		return wrapError(`kevent`, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range native[:count] {
		kev := &native[i]
		token, ok := s.token(kev)
		if !ok {
			// deregistered after the kernel queued the event
			continue
		}
		events.push(Event{token: token, flags: keventToFlags(kev)})
	}
	return nil
}

func (s *kqueueSelector) token(kev *unix.Kevent_t) (Token, bool) {
	if isUserKevent(kev) {
		return Token(s.wakerToken.Load()), true
	}
	reg, ok := s.fds[int(kev.Ident)]
	return reg.token, ok
}

func (s *kqueueSelector) close() error {
	return unix.Close(s.kq)
}

type kqueueFilter uint8

const (
	kqueueRead kqueueFilter = 1 << iota
	kqueueWrite
)

// kqueueFilters maps interest to filters. Priority, AIO and LIO have no
// kqueue equivalent here, and are ignored.
func kqueueFilters(interest Interest) kqueueFilter {
	var f kqueueFilter
	if interest.IsReadable() {
		f |= kqueueRead
	}
	if interest.IsWritable() {
		f |= kqueueWrite
	}
	return f
}

func kqueueAddFlags(edge bool) int {
	if edge {
		return unix.EV_ADD | unix.EV_ENABLE | unix.EV_CLEAR
	}
	return unix.EV_ADD | unix.EV_ENABLE
}

func kqueueChanges(fd int, f kqueueFilter, flags int) []unix.Kevent_t {
	changes := make([]unix.Kevent_t, 0, 2)
	if f&kqueueRead != 0 {
		var kev unix.Kevent_t
		unix.SetKevent(&kev, fd, unix.EVFILT_READ, flags)
		changes = append(changes, kev)
	}
	if f&kqueueWrite != 0 {
		var kev unix.Kevent_t
		unix.SetKevent(&kev, fd, unix.EVFILT_WRITE, flags)
		changes = append(changes, kev)
	}
	return changes
}

func keventToFlags(kev *unix.Kevent_t) eventFlags {
	var flags eventFlags
	switch {
	case kev.Filter == unix.EVFILT_READ, isUserKevent(kev):
		flags |= flagReadable
		if kev.Flags&unix.EV_EOF != 0 {
			flags |= flagReadClosed
		}
	case kev.Filter == unix.EVFILT_WRITE:
		flags |= flagWritable
		if kev.Flags&unix.EV_EOF != 0 {
			flags |= flagWriteClosed
		}
	}
	if kev.Flags&unix.EV_ERROR != 0 || (kev.Flags&unix.EV_EOF != 0 && kev.Fflags != 0) {
		flags |= flagError
	}
	return flags
}
