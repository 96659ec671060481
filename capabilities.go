package iopoll

// Capabilities describes what the selector behind a [Registry] supports.
// They are fixed per backend, at build time.
type Capabilities struct {
	// ConcurrentRegistration is true if registry methods may be called while
	// another goroutine is blocked in [Poll.Poll]. When false (poll_oneoff),
	// registering during a poll blocks until that poll returns, and a poll
	// with no timeout may therefore block registration forever.
	ConcurrentRegistration bool

	// Waker is true if a blocked poll can be interrupted by a [Waker]. When
	// false, [NewWaker] fails with [ErrWakerUnsupported].
	Waker bool
}
