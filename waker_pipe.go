//go:build (netbsd || openbsd || dragonfly) && !iopoll_oneoff

package iopoll

import (
	"golang.org/x/sys/unix"
)

// waker writes to a non-blocking pipe, for kqueue implementations without
// EVFILT_USER. The read end is registered with EV_CLEAR, so each write is
// reported once, and the pipe is only drained when it fills up.
type waker struct {
	sel *kqueueSelector
	r   int
	w   int
}

func newWaker(sel *kqueueSelector, token Token) (*waker, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	if err := sel.registerEdge(Handle(fds[0]), token); err != nil {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
		return nil, err
	}
	return &waker{sel: sel, r: fds[0], w: fds[1]}, nil
}

func (w *waker) wake() error {
	buf := [1]byte{1}
	for {
		_, err := unix.Write(w.w, buf[:])
		switch err {
		case nil:
			return nil
		case unix.EINTR:
		case unix.EAGAIN:
			// full, a wakeup is already pending
			if err := w.drain(); err != nil {
				return err
			}
		default:
			return err
		}
	}
}

func (w *waker) drain() error {
	var buf [512]byte
	for {
		_, err := unix.Read(w.r, buf[:])
		switch err {
		case nil, unix.EINTR:
		case unix.EAGAIN:
			return nil
		default:
			return err
		}
	}
}

func (w *waker) close() error {
	_ = w.sel.deregister(Handle(w.r))
	return w.release()
}

func (w *waker) release() error {
	err := unix.Close(w.r)
	if err2 := unix.Close(w.w); err == nil {
		err = err2
	}
	return err
}

func isUserKevent(*unix.Kevent_t) bool { return false }
