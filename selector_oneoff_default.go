//go:build wasip1 || (unix && iopoll_oneoff) || (unix && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly)

package iopoll

type (
	selector = oneoffSelector
	// nativeEvents is unused, the selector keeps its own record buffer
	nativeEvents = struct{}
)

func newSelector() (*oneoffSelector, error) {
	return newOneoffSelector(), nil
}

// waker is never created, see [Capabilities.Waker].
type waker struct{}

func newWaker(*oneoffSelector, Token) (*waker, error) { return nil, ErrWakerUnsupported }

func (*waker) wake() error    { return ErrWakerUnsupported }
func (*waker) close() error   { return nil }
func (*waker) release() error { return nil }
