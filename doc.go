// Package iopoll provides readiness-based I/O event notification, using the
// multiplexing primitive native to each platform.
//
// # Architecture
//
// A [Poll] owns one selector, the platform multiplexer, and exposes it to
// I/O sources through a [Registry]. Sources opt into notification by
// registering a [Handle] with a caller-chosen [Token] and a non-empty
// [Interest]. [Poll.Poll] blocks until at least one registration is ready, or
// the timeout elapses, then fills an [Events] buffer with one [Event] per
// readiness record. Callers dispatch on [Event.Token].
//
// # Platform Support
//
// The selector is chosen at build time:
//   - Linux: epoll
//   - macOS, FreeBSD, NetBSD, OpenBSD, DragonFly: kqueue
//   - Windows: AFD polling on an I/O completion port
//   - WASI (GOOS=wasip1): poll_oneoff, single-threaded
//
// Building with the iopoll_oneoff tag selects the poll_oneoff selector on
// unix hosts as well, backed by an emulation over poll(2).
//
// Registrations are persistent and level-triggered on every backend: a handle
// stays registered until deregistered, and is reported by each poll for as
// long as it stays ready. Draining a handle (until [ErrWouldBlock]) is still
// the cheapest way to avoid redundant wakeups.
//
// # Thread Safety
//
// On the kernel backends, [Registry] methods may be called from any goroutine,
// including while another goroutine is blocked in [Poll.Poll]. A [Waker] can
// be used to interrupt that wait.
//
// The poll_oneoff backend holds one lock over the subscription list for the
// whole wait, so registering while another goroutine polls blocks until the
// wait completes. It also has no way to interrupt a wait, and [NewWaker]
// fails with [ErrWakerUnsupported]. See [Registry.Capabilities].
//
// # Usage
//
//	p, err := iopoll.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	src, err := iopoll.NewIoSource(listener)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.Registry().Register(src, iopoll.Token(0), iopoll.Readable); err != nil {
//	    log.Fatal(err)
//	}
//
//	events := iopoll.NewEvents(128)
//	for {
//	    if err := p.Poll(events, iopoll.NoTimeout); err != nil {
//	        log.Fatal(err)
//	    }
//	    for ev := range events.All() {
//	        // dispatch on ev.Token()
//	    }
//	}
//
// # Errors
//
// Usage errors are reported as distinct sentinels ([ErrEmptyInterest],
// [ErrAlreadyRegistered], [ErrNotRegistered], [ErrWakerUnsupported], ...).
// OS errors are wrapped, so [errors.Is] against a [syscall.Errno] works.
// [ErrWouldBlock] is not a failure: it means "wait for the next event".
package iopoll
