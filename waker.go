package iopoll

import (
	"sync/atomic"
)

// Waker interrupts a blocked [Poll.Poll] from another goroutine. The woken
// poll returns a readable [Event] carrying the waker's token.
//
// A selector supports at most one open Waker. Wakes may coalesce: several
// calls to Wake before the poll observes them can produce a single event.
// Selectors without an interrupt mechanism (see [Capabilities.Waker]) cannot
// create a Waker at all.
type Waker struct {
	shared *sharedSelector
	inner  *waker
	token  Token
	closed atomic.Bool
}

// NewWaker creates a Waker for the selector behind registry, delivering
// events with the given token.
func NewWaker(registry *Registry, token Token) (*Waker, error) {
	sel, err := registry.use()
	if err != nil {
		return nil, err
	}
	defer registry.done()
	if !sel.capabilities().Waker {
		return nil, ErrWakerUnsupported
	}
	if !registry.shared.hasWaker.CompareAndSwap(false, true) {
		return nil, ErrWakerExists
	}
	inner, err := newWaker(sel, token)
	if err != nil {
		registry.shared.hasWaker.Store(false)
		registry.shared.logger.Err().
			Err(err).
			Log(`waker create failed`)
		return nil, wrapError(`new waker`, err)
	}
	registry.shared.logger.Debug().
		Str(`token`, token.String()).
		Log(`waker created`)
	return &Waker{shared: registry.shared, inner: inner, token: token}, nil
}

// Wake wakes the poll, or the next one if none is in progress. It is safe
// for concurrent use.
func (w *Waker) Wake() error {
	if w.closed.Load() || !w.shared.acquire() {
		return ErrClosed
	}
	defer func() { _ = w.shared.release() }()
	return wrapError(`wake`, w.inner.wake())
}

// Token returns the token wake events are delivered with.
func (w *Waker) Token() Token { return w.token }

// Close releases the Waker, allowing another to be created.
func (w *Waker) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	defer w.shared.hasWaker.Store(false)
	if w.shared.closed.Load() {
		// native resources owned by the selector are already gone
		return w.inner.release()
	}
	return wrapError(`close waker`, w.inner.close())
}
