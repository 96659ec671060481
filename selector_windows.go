//go:build windows

package iopoll

import (
	"math"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

type (
	selector     = iocpSelector
	nativeEvents = []overlappedEntry
)

// afdSocketState is one registered socket. Its address is the overlapped
// pointer of the socket's poll completions.
type afdSocketState struct { // betteralign:ignore
	iosb     windows.IO_STATUS_BLOCK
	pollInfo afdPollInfo
	raw      Handle
	base     windows.Handle
	token    Token
	interest Interest
	// pending is true while a poll request is outstanding
	pending bool
	deleted bool
}

// iocpSelector multiplexes using AFD poll requests, completed to an I/O
// completion port (Windows).
//
// Each registered socket keeps one poll request outstanding, re-submitted as
// soon as it completes, which makes registrations persistent and
// level-triggered. Cancelled requests still complete, so their state is kept
// reachable until then.
type iocpSelector struct { // betteralign:ignore
	port      windows.Handle
	afd       windows.Handle
	sid       uint64
	mu        sync.Mutex
	sockets   map[Handle]*afdSocketState
	cancelled map[*afdSocketState]struct{}
}

func newSelector() (*iocpSelector, error) {
	port, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	afd, err := openAFD(port)
	if err != nil {
		_ = windows.CloseHandle(port)
		return nil, err
	}
	return &iocpSelector{
		port:      port,
		afd:       afd,
		sid:       nextSelectorID(),
		sockets:   make(map[Handle]*afdSocketState),
		cancelled: make(map[*afdSocketState]struct{}),
	}, nil
}

func (s *iocpSelector) id() uint64 { return s.sid }

func (s *iocpSelector) capabilities() Capabilities {
	return Capabilities{ConcurrentRegistration: true, Waker: true}
}

func (s *iocpSelector) register(h Handle, token Token, interest Interest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sockets[h]; ok {
		return usageError(ErrAlreadyRegistered, `afd poll`, nil)
	}
	base, err := baseSocket(h)
	if err != nil {
		return wrapError(`base socket`, err)
	}
	state := &afdSocketState{raw: h, base: base, token: token, interest: interest}
	if err := s.arm(state); err != nil {
		return err
	}
	s.sockets[h] = state
	return nil
}

func (s *iocpSelector) reregister(h Handle, token Token, interest Interest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sockets[h]
	if !ok {
		return usageError(ErrNotRegistered, `afd poll`, nil)
	}
	state.token = token
	state.interest = interest
	if state.pending {
		// re-armed with the new interest once the cancellation completes
		s.cancel(state)
		return nil
	}
	return s.arm(state)
}

func (s *iocpSelector) deregister(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sockets[h]
	if !ok {
		return usageError(ErrNotRegistered, `afd poll`, nil)
	}
	delete(s.sockets, h)
	state.deleted = true
	if state.pending {
		s.cancelled[state] = struct{}{}
		s.cancel(state)
	}
	return nil
}

// arm submits a poll request for state, unless one is outstanding. Must hold mu.
func (s *iocpSelector) arm(state *afdSocketState) error {
	if state.pending {
		return nil
	}
	state.pollInfo = afdPollInfo{
		Timeout:         math.MaxInt64,
		NumberOfHandles: 1,
	}
	state.pollInfo.Handles[0] = afdPollHandleInfo{
		Handle: state.base,
		Events: interestToAFD(state.interest),
	}
	switch status := afdPoll(s.afd, state); status {
	case windows.STATUS_SUCCESS, windows.STATUS_PENDING:
		// a completion is queued either way
		state.pending = true
		return nil
	default:
		return wrapError(`afd poll`, status.Errno())
	}
}

// cancel cancels the outstanding poll request. Must hold mu.
func (s *iocpSelector) cancel(state *afdSocketState) {
	if state.iosb.Status != windows.STATUS_PENDING {
		// completed, the packet is already queued
		return
	}
	// STATUS_NOT_FOUND means it completed in the meantime, which is fine
	_ = afdCancel(s.afd, state)
}

func (s *iocpSelector) selectEvents(events *Events, timeout time.Duration) error {
	events.Clear()
	n := events.nativeCap()
	if cap(events.native) < n {
		events.native = make([]overlappedEntry, n)
	}
	native := events.native[:n]

	ms := uint32(windows.INFINITE)
	if timeout >= 0 {
		ms = uint32(timeoutMillis(timeout))
	}
	var removed uint32
	r1, _, e1 := procGetQueuedCompletionStatusEx.Call(
		uintptr(s.port),
		uintptr(unsafe.Pointer(&native[0])),
		uintptr(len(native)),
		uintptr(unsafe.Pointer(&removed)),
		uintptr(ms),
		0,
	)
	if r1 == 0 {
		if e1 == syscall.Errno(windows.WAIT_TIMEOUT) {
			return nil
		}
		return wrapError(`GetQueuedCompletionStatusEx`, e1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range native[:removed] {
		entry := &native[i]
		if entry.Overlapped == nil {
			// posted by the waker
			events.push(Event{token: Token(entry.CompletionKey), flags: flagReadable})
			continue
		}
		state := (*afdSocketState)(unsafe.Pointer(entry.Overlapped))
		if ev, ok := s.complete(state); ok {
			events.push(ev)
		}
	}
	return nil
}

// complete handles a poll completion, re-arming the socket. Must hold mu.
func (s *iocpSelector) complete(state *afdSocketState) (Event, bool) {
	state.pending = false
	if state.deleted {
		delete(s.cancelled, state)
		return Event{}, false
	}

	var afdEvents uint32
	switch status := state.iosb.Status; {
	case status == windows.STATUS_CANCELLED:
		// cancelled by reregister
	case status != windows.STATUS_SUCCESS:
		afdEvents = afdPollConnectFail
	case state.pollInfo.NumberOfHandles < 1:
	default:
		afdEvents = state.pollInfo.Handles[0].Events
	}

	if afdEvents&afdPollLocalClose != 0 {
		// the socket was closed without being deregistered
		delete(s.sockets, state.raw)
		state.deleted = true
		return Event{}, false
	}

	var ev Event
	ok := false
	if afdEvents &= interestToAFD(state.interest); afdEvents != 0 {
		ev, ok = Event{token: state.token, flags: afdToFlags(afdEvents)}, true
	}
	if err := s.arm(state); err != nil {
		// nothing to re-arm against, surface it as an error event
		ev, ok = Event{token: state.token, flags: ev.flags | flagError}, true
	}
	return ev, ok
}

// close closes the AFD handle, which cancels every outstanding request. The
// socket states stay referenced by the selector, since the kernel may still
// be writing to them.
func (s *iocpSelector) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := windows.CloseHandle(s.afd)
	if err2 := windows.CloseHandle(s.port); err == nil {
		err = err2
	}
	return err
}
