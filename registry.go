package iopoll

import (
	"sync/atomic"
)

// sharedSelector is the selector state shared by a Registry and its clones.
type sharedSelector struct { // betteralign:ignore
	sel    *selector
	logger logger
	refs   atomic.Int64
	closed atomic.Bool
	// hasWaker guards the single Waker per selector
	hasWaker atomic.Bool
	checks   bool
}

// acquire takes a reference, failing once the last one has been released.
func (x *sharedSelector) acquire() bool {
	for {
		n := x.refs.Load()
		if n <= 0 {
			return false
		}
		if x.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops a reference, closing the selector with the last one.
func (x *sharedSelector) release() error {
	if x.refs.Add(-1) != 0 {
		return nil
	}
	x.closed.Store(true)
	if err := x.sel.close(); err != nil {
		x.logger.Err().
			Err(err).
			Log(`selector close failed`)
		return wrapError(`close`, err)
	}
	x.logger.Debug().Log(`selector closed`)
	return nil
}

// Registry registers handles with the selector of a [Poll].
//
// Registry methods are safe for concurrent use. See [Capabilities] for whether
// they may be used while a poll is in progress. Each call holds a reference to
// the selector until it returns, so a concurrent Close never closes the
// selector out from under it.
type Registry struct {
	shared *sharedSelector
	closed atomic.Bool
}

// selector checks the registry is open, without holding a reference.
func (r *Registry) selector() (*selector, error) {
	if r == nil || r.closed.Load() || r.shared.closed.Load() {
		return nil, ErrClosed
	}
	return r.shared.sel, nil
}

// use takes a reference to the selector, which must be returned by calling
// done. The selector stays open until then, even if closed concurrently.
func (r *Registry) use() (*selector, error) {
	if r == nil || r.closed.Load() || !r.shared.acquire() {
		return nil, ErrClosed
	}
	return r.shared.sel, nil
}

func (r *Registry) done() {
	// failures to close are logged by release
	_ = r.shared.release()
}

// Register registers src, delivering events with the given token and
// interest. It delegates to [Source.Register].
func (r *Registry) Register(src Source, token Token, interest Interest) error {
	if err := interest.validate(); err != nil {
		return err
	}
	return src.Register(r, token, interest)
}

// Reregister replaces the token and interest of a registered src.
func (r *Registry) Reregister(src Source, token Token, interest Interest) error {
	if err := interest.validate(); err != nil {
		return err
	}
	return src.Reregister(r, token, interest)
}

// Deregister removes src. No events are delivered for it afterwards, except
// those already returned by an earlier poll.
func (r *Registry) Deregister(src Source) error {
	return src.Deregister(r)
}

// RegisterHandle registers a raw handle. Sources forward to it.
//
// The handle must not already be registered with this selector, see
// [ErrAlreadyRegistered].
func (r *Registry) RegisterHandle(h Handle, token Token, interest Interest) error {
	sel, err := r.use()
	if err != nil {
		return err
	}
	defer r.done()
	if err := interest.validate(); err != nil {
		return err
	}
	err = sel.register(h, token, interest)
	logRegistration(r.shared.logger, `register`, sel.id(), h, token, interest, err)
	return err
}

// ReregisterHandle replaces the token and interest of a registered handle.
func (r *Registry) ReregisterHandle(h Handle, token Token, interest Interest) error {
	sel, err := r.use()
	if err != nil {
		return err
	}
	defer r.done()
	if err := interest.validate(); err != nil {
		return err
	}
	err = sel.reregister(h, token, interest)
	logRegistration(r.shared.logger, `reregister`, sel.id(), h, token, interest, err)
	return err
}

// DeregisterHandle removes a registered handle. Deregistering a handle that
// isn't registered, e.g. twice, fails with [ErrNotRegistered].
func (r *Registry) DeregisterHandle(h Handle) error {
	sel, err := r.use()
	if err != nil {
		return err
	}
	defer r.done()
	err = sel.deregister(h)
	logDeregistration(r.shared.logger, sel.id(), h, err)
	return err
}

// Capabilities reports what the underlying selector supports.
func (r *Registry) Capabilities() Capabilities {
	if r == nil {
		return Capabilities{}
	}
	return r.shared.sel.capabilities()
}

// TryClone returns a new Registry sharing the same selector. The selector is
// closed once the [Poll] and every clone have been closed.
func (r *Registry) TryClone() (*Registry, error) {
	if r == nil || r.closed.Load() || !r.shared.acquire() {
		return nil, ErrClosed
	}
	return &Registry{shared: r.shared}, nil
}

// Close releases this Registry's reference to the selector. It is idempotent.
// Closing the Registry returned by [Poll.Registry] is equivalent to closing
// the Poll.
func (r *Registry) Close() error {
	if r == nil || r.closed.Swap(true) {
		return nil
	}
	return r.shared.release()
}

// selectorID identifies the selector, for source association checks.
func (r *Registry) selectorID() uint64 {
	return r.shared.sel.id()
}
