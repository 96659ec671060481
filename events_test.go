package iopoll

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_predicates(t *testing.T) {
	e := Event{token: 7, flags: flagReadable | flagReadClosed}
	assert.Equal(t, Token(7), e.Token())
	assert.True(t, e.IsReadable())
	assert.True(t, e.IsReadClosed())
	assert.False(t, e.IsWritable())
	assert.False(t, e.IsWriteClosed())
	assert.False(t, e.IsError())
	assert.False(t, e.IsPriority())
	assert.False(t, e.IsAIO())
	assert.False(t, e.IsLIO())
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, `Event{Token(3), READABLE|WRITABLE|ERROR}`, Event{token: 3, flags: flagError | flagWritable | flagReadable}.String())
	assert.Equal(t, `Event{Token(0), NONE}`, Event{}.String())
}

func TestNewEvents(t *testing.T) {
	events := NewEvents(4)
	assert.Equal(t, 4, events.Cap())
	assert.Equal(t, 0, events.Len())
	assert.True(t, events.IsEmpty())
	assert.Equal(t, 4, events.nativeCap())

	events = NewEvents(-1)
	assert.Equal(t, 0, events.Cap())
	assert.Equal(t, 1, events.nativeCap())
}

func TestEvents_lifecycle(t *testing.T) {
	events := NewEvents(2)
	events.push(Event{token: 1, flags: flagReadable})
	events.push(Event{token: 2, flags: flagWritable})
	events.push(Event{token: 3, flags: flagReadable})
	require.Equal(t, 3, events.Len())
	assert.Equal(t, Token(2), events.At(1).Token())

	tokens := slices.Collect(func(yield func(Token) bool) {
		for e := range events.All() {
			if !yield(e.Token()) {
				return
			}
		}
	})
	assert.Equal(t, []Token{1, 2, 3}, tokens)

	events.swapRemove(0)
	require.Equal(t, 2, events.Len())
	assert.Equal(t, Token(3), events.At(0).Token())
	assert.Equal(t, Token(2), events.At(1).Token())

	c := events.Cap()
	events.Clear()
	assert.True(t, events.IsEmpty())
	assert.Equal(t, c, events.Cap())
	assert.Panics(t, func() { events.At(0) })
}

func TestEvents_All_stops(t *testing.T) {
	events := NewEvents(3)
	for i := range 3 {
		events.push(Event{token: Token(i)})
	}
	var n int
	for range events.All() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestEvents_reserve(t *testing.T) {
	events := NewEvents(1)
	events.push(Event{token: 9})
	events.reserve(8)
	assert.GreaterOrEqual(t, events.Cap(), 8)
	assert.Equal(t, 1, events.Len())
	assert.Equal(t, Token(9), events.At(0).Token())

	// never shrinks
	events.reserve(2)
	assert.GreaterOrEqual(t, events.Cap(), 8)
}
