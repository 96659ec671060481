//go:build unix

package iopoll

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestIoSource_DoIO(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()

	src, err := NewIoSource(r)
	require.NoError(t, err)
	defer src.Close()
	assert.Same(t, r, src.Inner())

	buf := make([]byte, 8)
	var n int
	read := func(fd uintptr) (err error) {
		n, err = unix.Read(int(fd), buf)
		return err
	}

	err = src.DoIO(read)
	assert.ErrorIs(t, err, ErrWouldBlock)
	assert.ErrorIs(t, err, unix.EAGAIN)

	_, err = w.Write([]byte(`xyz`))
	require.NoError(t, err)
	require.NoError(t, src.DoIO(read))
	assert.Equal(t, `xyz`, string(buf[:n]))

	assert.ErrorIs(t, src.DoIO(func(uintptr) error { return unix.EBADF }), unix.EBADF)
	assert.NotErrorIs(t, src.DoIO(func(uintptr) error { return unix.EBADF }), ErrWouldBlock)
}

func TestIoSource_DoIO_retriesInterrupted(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()
	src, err := NewIoSource(r)
	require.NoError(t, err)

	var calls int
	err = src.DoIO(func(uintptr) error {
		calls++
		if calls < 3 {
			return unix.EINTR
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestIoSource_listener(t *testing.T) {
	ln, err := net.ListenTCP(`tcp`, &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	src, err := NewIoSource(ln)
	require.NoError(t, err)
	defer src.Close()

	p := testPoll(t)
	require.NoError(t, p.Registry().Register(src, Token(1), Readable))

	conn, err := net.Dial(`tcp`, ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	events := NewEvents(8)
	pollFor(t, p, events)
	assert.Equal(t, []Token{1}, tokensOf(events))
	assert.True(t, events.At(0).IsReadable())

	accepted, err := ln.Accept()
	require.NoError(t, err)
	_ = accepted.Close()

	require.NoError(t, p.Registry().Deregister(src))
}

func TestIoSource_associationChecks(t *testing.T) {
	r, _, _ := testPipe(t)
	src, err := NewIoSource(r)
	require.NoError(t, err)

	p1 := testPoll(t, WithAssociationChecks(true))
	p2 := testPoll(t, WithAssociationChecks(true))

	require.NoError(t, p1.Registry().Register(src, Token(1), Readable))

	err = p2.Registry().Register(src, Token(1), Readable)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	assert.Panics(t, func() { _ = p2.Registry().Reregister(src, Token(1), Writable) })
	assert.Panics(t, func() { _ = p2.Registry().Deregister(src) })

	require.NoError(t, p1.Registry().Reregister(src, Token(2), Readable))
	require.NoError(t, p1.Registry().Deregister(src))

	// free to move once deregistered
	require.NoError(t, p2.Registry().Register(src, Token(1), Readable))
	require.NoError(t, p2.Registry().Deregister(src))
}

func TestIoSource_associationRollback(t *testing.T) {
	r, _, rh := testPipe(t)
	src, err := NewIoSource(r)
	require.NoError(t, err)

	p := testPoll(t, WithAssociationChecks(true))
	assert.ErrorIs(t, p.Registry().Register(src, Token(1), 0), ErrEmptyInterest)

	// the handle is taken directly, so the source registration fails
	require.NoError(t, p.Registry().RegisterHandle(rh, Token(1), Readable))
	assert.ErrorIs(t, p.Registry().Register(src, Token(2), Readable), ErrAlreadyRegistered)
	require.NoError(t, p.Registry().DeregisterHandle(rh))

	require.NoError(t, p.Registry().Register(src, Token(2), Readable))
}

func TestIoSource_noAssociationChecks(t *testing.T) {
	r, _, _ := testPipe(t)
	src, err := NewIoSource(r)
	require.NoError(t, err)

	p1 := testPoll(t, WithAssociationChecks(false))
	p2 := testPoll(t, WithAssociationChecks(false))

	require.NoError(t, p1.Registry().Register(src, Token(1), Readable))
	// the selector itself has no knowledge of the other registration
	assert.NotPanics(t, func() { _ = p2.Registry().Deregister(src) })
}
