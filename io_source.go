package iopoll

import (
	"fmt"
	"sync/atomic"
	"syscall"
)

// IoSource adapts any [syscall.Conn], e.g. a *net.TCPConn, *net.UnixListener,
// or *os.File, into a [Source].
//
// The inner value stays owned by the IoSource. Deregister it before closing.
// [IoSource.DoIO] performs raw I/O against the handle, translating the
// platform's would-block condition to [ErrWouldBlock].
//
// When association checks are enabled (see [WithAssociationChecks]), the
// source records the selector it was registered with, and using it with a
// different one panics.
type IoSource[T syscall.Conn] struct {
	inner  T
	raw    syscall.RawConn
	handle Handle
	// selector the source is registered with, zero if none
	assoc atomic.Uint64
}

// NewIoSource wraps inner, resolving its handle.
func NewIoSource[T syscall.Conn](inner T) (*IoSource[T], error) {
	raw, err := inner.SyscallConn()
	if err != nil {
		return nil, wrapError(`syscall conn`, err)
	}
	var h Handle
	if err := raw.Control(func(fd uintptr) { h = Handle(fd) }); err != nil {
		return nil, wrapError(`control`, err)
	}
	return &IoSource[T]{inner: inner, raw: raw, handle: h}, nil
}

// Inner returns the wrapped value.
func (s *IoSource[T]) Inner() T { return s.inner }

// Handle returns the raw handle, as resolved by [NewIoSource].
func (s *IoSource[T]) Handle() Handle { return s.handle }

// DoIO calls f with the raw handle, while the runtime guarantees it stays
// open. Interrupted calls (EINTR) are retried. If f reports that the
// operation would block, DoIO returns an error wrapping both [ErrWouldBlock]
// and the original error.
func (s *IoSource[T]) DoIO(f func(fd uintptr) error) error {
	var err error
	for {
		if cerr := s.raw.Control(func(fd uintptr) { err = f(fd) }); cerr != nil {
			return wrapError(`control`, cerr)
		}
		if !isRetryable(err) {
			break
		}
	}
	if isWouldBlock(err) {
		return fmt.Errorf("%w: %w", ErrWouldBlock, err)
	}
	return err
}

func (s *IoSource[T]) Register(registry *Registry, token Token, interest Interest) error {
	checks, err := s.associate(registry)
	if err != nil {
		return err
	}
	err = registry.RegisterHandle(s.handle, token, interest)
	if err != nil && checks {
		s.assoc.Store(0)
	}
	return err
}

func (s *IoSource[T]) Reregister(registry *Registry, token Token, interest Interest) error {
	if err := s.checkAssociation(registry); err != nil {
		return err
	}
	return registry.ReregisterHandle(s.handle, token, interest)
}

func (s *IoSource[T]) Deregister(registry *Registry) error {
	if err := s.checkAssociation(registry); err != nil {
		return err
	}
	err := registry.DeregisterHandle(s.handle)
	if err == nil && registry.shared.checks {
		s.assoc.Store(0)
	}
	return err
}

// Close closes the inner value, if it implements io.Closer.
func (s *IoSource[T]) Close() error {
	if c, ok := any(s.inner).(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (s *IoSource[T]) associate(registry *Registry) (bool, error) {
	if _, err := registry.selector(); err != nil {
		return false, err
	}
	if !registry.shared.checks {
		return false, nil
	}
	if !s.assoc.CompareAndSwap(0, registry.selectorID()) {
		return false, usageError(ErrAlreadyRegistered, `io source`, nil)
	}
	return true, nil
}

// checkAssociation panics if the source is registered with a different
// selector than registry's.
func (s *IoSource[T]) checkAssociation(registry *Registry) error {
	if _, err := registry.selector(); err != nil {
		return err
	}
	if !registry.shared.checks {
		return nil
	}
	if id := s.assoc.Load(); id != 0 && id != registry.selectorID() {
		panic(fmt.Sprintf(`iopoll: io source %s registered with selector %d, used with selector %d`, s.handle, id, registry.selectorID()))
	}
	return nil
}
