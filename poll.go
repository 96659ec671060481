package iopoll

import (
	"errors"
	"syscall"
	"time"
)

// Poll waits for readiness events on registered handles.
//
// A Poll owns one selector. Handles are registered through [Poll.Registry],
// and events are collected by [Poll.Poll], which is normally called from a
// single goroutine.
type Poll struct {
	registry *Registry
}

// New creates a Poll, backed by the selector native to the platform.
func New(opts ...Option) (*Poll, error) {
	cfg, err := resolvePollOptions(opts)
	if err != nil {
		return nil, err
	}
	sel, err := newSelector()
	if err != nil {
		cfg.logger.Err().
			Err(err).
			Log(`selector create failed`)
		return nil, wrapError(`new selector`, err)
	}
	shared := &sharedSelector{
		sel:    sel,
		logger: cfg.logger,
		checks: cfg.associationChecks,
	}
	shared.refs.Store(1)
	caps := sel.capabilities()
	cfg.logger.Debug().
		Int(`selector`, int(sel.id())).
		Bool(`concurrent_registration`, caps.ConcurrentRegistration).
		Bool(`waker`, caps.Waker).
		Log(`selector created`)
	return &Poll{registry: &Registry{shared: shared}}, nil
}

// Registry returns the registry used to register handles with this Poll.
func (p *Poll) Registry() *Registry {
	return p.registry
}

// Poll clears events, then waits until at least one registered handle is
// ready, or the timeout elapses. A negative timeout (e.g. [NoTimeout]) waits
// indefinitely, and zero returns immediately.
//
// Interrupted waits are retried with the remaining timeout. On timeout, nil
// is returned with events empty. A [SubscriptionError] is returned if the
// selector failed a single subscription, in which case events holds what was
// collected before the failure.
func (p *Poll) Poll(events *Events, timeout time.Duration) error {
	sel, err := p.registry.use()
	if err != nil {
		return err
	}
	defer p.registry.done()
	err = retryInterrupted(timeout, func(timeout time.Duration) error {
		return sel.selectEvents(events, timeout)
	})
	if err != nil {
		var subErr *SubscriptionError
		if errors.As(err, &subErr) {
			p.registry.shared.logger.Debug().
				Str(`token`, subErr.Token.String()).
				Err(subErr.Err).
				Int(`events`, events.Len()).
				Log(`subscription failed`)
		} else {
			p.registry.shared.logger.Err().
				Err(err).
				Log(`poll failed`)
		}
	}
	return err
}

// Close closes the Poll's registry, and the selector once no clones remain.
// A Poll.Poll or registry call already in progress keeps the selector open
// until it returns, so closing does not interrupt a blocked poll, use a
// [Waker] for that.
func (p *Poll) Close() error {
	return p.registry.Close()
}

// retryInterrupted calls wait until it returns anything but an interrupted
// wait, passing the time remaining until the deadline implied by timeout.
// Negative and zero timeouts are passed through unchanged.
func retryInterrupted(timeout time.Duration, wait func(timeout time.Duration) error) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		err := wait(timeout)
		if !isInterrupted(err) {
			return err
		}
		if timeout > 0 {
			timeout = max(time.Until(deadline), 0)
		}
	}
}

// isInterrupted is true for a whole-wait EINTR, never for a per-subscription
// error.
func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	var subErr *SubscriptionError
	if errors.As(err, &subErr) {
		return false
	}
	return errors.Is(err, syscall.EINTR)
}
