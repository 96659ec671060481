//go:build linux && !iopoll_oneoff

package iopoll

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestEpoll_priorityFlags(t *testing.T) {
	assert.Equal(t, uint32(unix.EPOLLPRI), interestToEpoll(Priority))
	assert.Zero(t, interestToEpoll(AIO|LIO))

	flags := epollToFlags(unix.EPOLLPRI)
	assert.True(t, Event{flags: flags}.IsPriority())
	assert.True(t, Event{flags: flags}.IsReadable())
}

func TestPoll_priority(t *testing.T) {
	ln, err := net.ListenTCP(`tcp`, &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer ln.Close()

	client, err := net.DialTCP(`tcp`, nil, ln.Addr().(*net.TCPAddr))
	require.NoError(t, err)
	defer client.Close()

	server, err := ln.AcceptTCP()
	require.NoError(t, err)
	src, err := NewIoSource(server)
	require.NoError(t, err)
	defer src.Close()

	p := testPoll(t)
	require.NoError(t, p.Registry().Register(src, Token(9), Priority))

	events := NewEvents(8)
	require.NoError(t, p.Poll(events, 0))
	assert.True(t, events.IsEmpty())

	// out-of-band data raises EPOLLPRI
	raw, err := client.SyscallConn()
	require.NoError(t, err)
	var sendErr error
	require.NoError(t, raw.Control(func(fd uintptr) {
		sendErr = unix.Sendto(int(fd), []byte{'!'}, unix.MSG_OOB, nil)
	}))
	require.NoError(t, sendErr)

	pollFor(t, p, events)
	require.Equal(t, []Token{9}, tokensOf(events))
	assert.True(t, events.At(0).IsPriority())
	assert.False(t, events.At(0).IsWritable())
}
