//go:build (darwin || freebsd) && !iopoll_oneoff

package iopoll

import (
	"golang.org/x/sys/unix"
)

// kqueueWakerIdent is the EVFILT_USER ident. It cannot collide with a
// descriptor, since kqueue keys filters by ident and filter together.
const kqueueWakerIdent = 0

// waker triggers an EVFILT_USER filter, EV_CLEAR resets it once reported.
type waker struct {
	sel *kqueueSelector
}

func newWaker(sel *kqueueSelector, token Token) (*waker, error) {
	sel.wakerToken.Store(uint64(token))
	if err := sel.apply(userKevent(unix.EV_ADD|unix.EV_CLEAR, 0)); err != nil {
		return nil, err
	}
	return &waker{sel: sel}, nil
}

func (w *waker) wake() error {
	return w.sel.apply(userKevent(unix.EV_ADD|unix.EV_CLEAR, unix.NOTE_TRIGGER))
}

func (w *waker) close() error {
	return w.sel.apply(userKevent(unix.EV_DELETE, 0))
}

func (w *waker) release() error { return nil }

func userKevent(flags int, fflags uint32) []unix.Kevent_t {
	var kev unix.Kevent_t
	unix.SetKevent(&kev, kqueueWakerIdent, unix.EVFILT_USER, flags)
	kev.Fflags = fflags
	return []unix.Kevent_t{kev}
}

func isUserKevent(kev *unix.Kevent_t) bool {
	return kev.Filter == unix.EVFILT_USER
}
