//go:build linux && !iopoll_oneoff

package iopoll

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// waker signals an eventfd, registered edge-triggered so each write produces
// an event without the counter ever needing to be read.
type waker struct {
	sel *epollSelector
	fd  int
}

func newWaker(sel *epollSelector, token Token) (*waker, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	if err := sel.registerEdge(Handle(fd), token); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return &waker{sel: sel, fd: fd}, nil
}

func (w *waker) wake() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	for {
		_, err := unix.Write(w.fd, buf[:])
		switch err {
		case nil:
			return nil
		case unix.EINTR:
		case unix.EAGAIN:
			// the counter would overflow, reset it then try again
			if err := w.reset(); err != nil {
				return err
			}
		default:
			return err
		}
	}
}

func (w *waker) reset() error {
	var buf [8]byte
	if _, err := unix.Read(w.fd, buf[:]); err != nil && err != unix.EAGAIN {
		return err
	}
	return nil
}

func (w *waker) close() error {
	_ = w.sel.deregister(Handle(w.fd))
	return w.release()
}

func (w *waker) release() error {
	return unix.Close(w.fd)
}
