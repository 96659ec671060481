//go:build unix

package iopoll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_TryClone(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	_, w, rh := testPipe(t)

	clone, err := p.Registry().TryClone()
	require.NoError(t, err)
	assert.Equal(t, p.Registry().Capabilities(), clone.Capabilities())

	// registrations through the clone are delivered to the poll
	require.NoError(t, clone.Register(SourceHandle(rh), Token(5), Readable))
	_, err = w.Write([]byte{1})
	require.NoError(t, err)
	events := NewEvents(4)
	pollFor(t, p, events)
	assert.Equal(t, []Token{5}, tokensOf(events))

	// the selector outlives the poll while a clone is open
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Poll(events, 0), ErrClosed)
	require.NoError(t, clone.DeregisterHandle(rh))

	_, err = p.Registry().TryClone()
	assert.ErrorIs(t, err, ErrClosed)

	clone2, err := clone.TryClone()
	require.NoError(t, err)

	require.NoError(t, clone.Close())
	require.NoError(t, clone.Close())
	assert.ErrorIs(t, clone.RegisterHandle(rh, Token(1), Readable), ErrClosed)

	require.NoError(t, clone2.RegisterHandle(rh, Token(1), Readable))
	require.NoError(t, clone2.Close())

	// last reference gone
	assert.True(t, clone2.shared.closed.Load())
	_, err = clone2.TryClone()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegistry_nil(t *testing.T) {
	var r *Registry
	assert.ErrorIs(t, r.RegisterHandle(0, 0, Readable), ErrClosed)
	assert.NoError(t, r.Close())
	assert.Equal(t, Capabilities{}, r.Capabilities())
	_, err := r.TryClone()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegistry_concurrentRegistration(t *testing.T) {
	p := testPoll(t)
	if !p.Registry().Capabilities().ConcurrentRegistration {
		t.Skip(`selector does not support registration during a poll`)
	}
	_, w, rh := testPipe(t)

	done := make(chan error, 1)
	events := NewEvents(4)
	go func() { done <- p.Poll(events, 5*time.Second) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Registry().Register(SourceHandle(rh), Token(8), Readable))
	_, err := w.Write([]byte{1})
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal(`poll did not return`)
	}
	assert.Equal(t, []Token{8}, tokensOf(events))
}

func TestRegistry_closeDuringCall(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	_, w, rh := testPipe(t)
	registry := p.Registry()

	// a call in progress holds the selector open
	sel, err := registry.use()
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.False(t, registry.shared.closed.Load())
	assert.ErrorIs(t, registry.RegisterHandle(rh, Token(1), Readable), ErrClosed)

	require.NoError(t, sel.register(rh, Token(1), Readable))
	_, err = w.Write([]byte{1})
	require.NoError(t, err)
	events := NewEvents(4)
	require.NoError(t, sel.selectEvents(events, time.Second))
	assert.Equal(t, []Token{1}, tokensOf(events))

	registry.done()
	assert.True(t, registry.shared.closed.Load())
	_, err = registry.use()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegistry_closeDuringPoll(t *testing.T) {
	p := testPoll(t)
	_, w, rh := testPipe(t)
	require.NoError(t, p.Registry().RegisterHandle(rh, Token(1), Readable))

	done := make(chan error, 1)
	events := NewEvents(4)
	go func() { done <- p.Poll(events, 2*time.Second) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Close())
	assert.False(t, p.Registry().shared.closed.Load())

	// the blocked poll still completes against an open selector
	_, err := w.Write([]byte{1})
	require.NoError(t, err)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal(`poll did not return`)
	}
	assert.True(t, p.Registry().shared.closed.Load())
	assert.ErrorIs(t, p.Poll(events, 0), ErrClosed)
}
