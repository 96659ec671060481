package iopoll

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrEmptyInterest is returned when registering with an [Interest] that
	// has no flags set.
	ErrEmptyInterest = errors.New("iopoll: interest must not be empty")

	// ErrAlreadyRegistered is returned when registering a handle that is
	// already registered. Use reregister to change an existing registration.
	ErrAlreadyRegistered = errors.New("iopoll: handle already registered")

	// ErrNotRegistered is returned by reregister and deregister for a handle
	// that isn't registered, including deregistering the same handle twice.
	ErrNotRegistered = errors.New("iopoll: handle not registered")

	// ErrWakerUnsupported is returned by [NewWaker] on selectors that cannot
	// interrupt a blocked poll, see [Capabilities.Waker].
	ErrWakerUnsupported = errors.New("iopoll: waker not supported by this selector")

	// ErrWakerExists is returned by [NewWaker] if the selector already has
	// an open [Waker].
	ErrWakerExists = errors.New("iopoll: selector already has a waker")

	// ErrReservedToken is returned when registering with a token the
	// selector uses internally.
	ErrReservedToken = errors.New("iopoll: token is reserved by the selector")

	// ErrWouldBlock indicates an operation could not complete without
	// blocking. It is not a failure: wait for the next event, then retry.
	ErrWouldBlock = errors.New("iopoll: operation would block")

	// ErrClosed is returned by operations on a closed [Poll], [Registry], or
	// [Waker].
	ErrClosed = errors.New("iopoll: closed")
)

// SubscriptionError is returned by [Poll.Poll] when the selector reports an
// error against a single subscription, rather than for the wait as a whole.
//
// The events translated by the same poll are still available in the
// [Events] buffer, so callers may drain them before handling the error.
type SubscriptionError struct {
	// Err is the error reported for the subscription, typically an errno.
	Err error
	// Token identifies the failed registration.
	Token Token
}

// Error implements the error interface.
func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("iopoll: subscription %s: %v", e.Token, e.Err)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

// wrapError annotates an OS error with the operation that produced it,
// keeping it in the chain.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("iopoll: %s: %w", op, err)
}

// usageError combines a usage sentinel with the OS error that revealed it.
func usageError(sentinel error, op string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", sentinel, op)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, op, cause)
}
