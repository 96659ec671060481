package iopoll

import (
	"strings"
)

// Interest is the set of readiness conditions a registration cares about.
//
// A valid Interest is never empty. The exported constants are all valid, and
// may be combined using [Interest.Add], or [NewInterest]. Registering an empty
// Interest fails with [ErrEmptyInterest].
type Interest uint8

const (
	// Readable interest, including read-closed notification.
	Readable Interest = 1 << iota
	// Writable interest, including write-closed notification.
	Writable
	// Priority interest, for out-of-band data (EPOLLPRI). Only epoll honours
	// it, other backends ignore the flag.
	Priority
	// AIO interest. Not supported by any backend, and ignored.
	AIO
	// LIO interest. Not supported by any backend, and ignored.
	LIO
)

const interestMask = Readable | Writable | Priority | AIO | LIO

// NewInterest returns the union of parts, or [ErrEmptyInterest] if the union
// contains no known flag.
func NewInterest(parts ...Interest) (Interest, error) {
	var i Interest
	for _, p := range parts {
		i |= p
	}
	i &= interestMask
	if i == 0 {
		return 0, ErrEmptyInterest
	}
	return i, nil
}

// MustInterest is like [NewInterest], but panics on error.
func MustInterest(parts ...Interest) Interest {
	i, err := NewInterest(parts...)
	if err != nil {
		panic(err)
	}
	return i
}

// Add returns the union of i and other.
func (i Interest) Add(other Interest) Interest {
	return i | other
}

// Remove returns i without the flags in other. The boolean result is false if
// that would leave the interest empty, in which case the returned value must
// not be used for registration.
func (i Interest) Remove(other Interest) (Interest, bool) {
	r := i &^ other
	return r, !r.IsEmpty()
}

func (i Interest) IsEmpty() bool    { return i&interestMask == 0 }
func (i Interest) IsReadable() bool { return i&Readable != 0 }
func (i Interest) IsWritable() bool { return i&Writable != 0 }
func (i Interest) IsPriority() bool { return i&Priority != 0 }
func (i Interest) IsAIO() bool      { return i&AIO != 0 }
func (i Interest) IsLIO() bool      { return i&LIO != 0 }

func (i Interest) String() string {
	if i.IsEmpty() {
		return `EMPTY`
	}
	var b strings.Builder
	for _, f := range [...]struct {
		flag Interest
		name string
	}{
		{Readable, `READABLE`},
		{Writable, `WRITABLE`},
		{Priority, `PRIORITY`},
		{AIO, `AIO`},
		{LIO, `LIO`},
	} {
		if i&f.flag == 0 {
			continue
		}
		if b.Len() != 0 {
			b.WriteString(` | `)
		}
		b.WriteString(f.name)
	}
	return b.String()
}

func (i Interest) validate() error {
	if i.IsEmpty() {
		return ErrEmptyInterest
	}
	return nil
}
