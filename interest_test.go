package iopoll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterest(t *testing.T) {
	i, err := NewInterest(Readable, Writable)
	require.NoError(t, err)
	assert.True(t, i.IsReadable())
	assert.True(t, i.IsWritable())
	assert.False(t, i.IsPriority())
	assert.Equal(t, Readable|Writable, i)

	_, err = NewInterest()
	assert.ErrorIs(t, err, ErrEmptyInterest)

	_, err = NewInterest(0, 0)
	assert.ErrorIs(t, err, ErrEmptyInterest)

	// unknown bits don't make an interest valid
	_, err = NewInterest(Interest(1 << 7))
	assert.ErrorIs(t, err, ErrEmptyInterest)
}

func TestMustInterest_panics(t *testing.T) {
	assert.Panics(t, func() { MustInterest() })
	assert.Equal(t, Priority, MustInterest(Priority))
}

func TestInterest_AddRemove(t *testing.T) {
	i := Readable.Add(Writable).Add(Readable)
	assert.Equal(t, Readable|Writable, i)

	r, ok := i.Remove(Writable)
	assert.True(t, ok)
	assert.Equal(t, Readable, r)

	r, ok = r.Remove(Readable)
	assert.False(t, ok)
	assert.True(t, r.IsEmpty())

	r, ok = Readable.Remove(Writable)
	assert.True(t, ok)
	assert.Equal(t, Readable, r)
}

func TestInterest_String(t *testing.T) {
	for _, tc := range [...]struct {
		interest Interest
		want     string
	}{
		{Readable, `READABLE`},
		{Writable | Readable, `READABLE | WRITABLE`},
		{Readable | Writable | Priority | AIO | LIO, `READABLE | WRITABLE | PRIORITY | AIO | LIO`},
		{0, `EMPTY`},
	} {
		assert.Equal(t, tc.want, tc.interest.String())
	}
}

func TestInterest_validate(t *testing.T) {
	assert.NoError(t, AIO.validate())
	assert.ErrorIs(t, Interest(0).validate(), ErrEmptyInterest)
}
