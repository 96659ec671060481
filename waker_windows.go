//go:build windows

package iopoll

import (
	"golang.org/x/sys/windows"
)

// waker posts a completion packet with no overlapped pointer, keyed by the
// token.
type waker struct {
	port  windows.Handle
	token Token
}

func newWaker(sel *iocpSelector, token Token) (*waker, error) {
	return &waker{port: sel.port, token: token}, nil
}

func (w *waker) wake() error {
	return windows.PostQueuedCompletionStatus(w.port, 0, uintptr(w.token), nil)
}

func (w *waker) close() error   { return nil }
func (w *waker) release() error { return nil }
