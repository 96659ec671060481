package iopoll

import (
	"strings"
)

// eventFlags is the portable form of a native readiness record. Each
// selector translates its own record layout into these flags, so the layout
// never escapes the backend.
type eventFlags uint16

const (
	flagReadable eventFlags = 1 << iota
	flagWritable
	flagReadClosed
	flagWriteClosed
	flagError
	flagPriority
	flagAIO
	flagLIO
)

var eventFlagNames = [...]struct {
	flag eventFlags
	name string
}{
	{flagReadable, `READABLE`},
	{flagWritable, `WRITABLE`},
	{flagReadClosed, `READ_CLOSED`},
	{flagWriteClosed, `WRITE_CLOSED`},
	{flagError, `ERROR`},
	{flagPriority, `PRIORITY`},
	{flagAIO, `AIO`},
	{flagLIO, `LIO`},
}

// Event is a single readiness record, reported by [Poll.Poll].
//
// The predicates are hints, and may be set spuriously. A handle may also be
// reported more than once per poll, e.g. as separate readable and writable
// records, so each predicate should be handled independently.
type Event struct {
	token Token
	flags eventFlags
}

// Token returns the token the handle was registered with.
func (e Event) Token() Token { return e.token }

// IsReadable reports whether the handle is readable, or has a pending accept.
func (e Event) IsReadable() bool { return e.flags&flagReadable != 0 }

// IsWritable reports whether the handle is writable.
func (e Event) IsWritable() bool { return e.flags&flagWritable != 0 }

// IsReadClosed reports whether the read half is closed, e.g. the peer
// shut down writing. Some backends can't tell a read close from a full close.
func (e Event) IsReadClosed() bool { return e.flags&flagReadClosed != 0 }

// IsWriteClosed reports whether the write half is closed.
func (e Event) IsWriteClosed() bool { return e.flags&flagWriteClosed != 0 }

// IsError reports an error condition on the handle. The error itself must be
// retrieved from the handle, e.g. via SO_ERROR.
func (e Event) IsError() bool { return e.flags&flagError != 0 }

// IsPriority reports out-of-band (priority) data.
func (e Event) IsPriority() bool { return e.flags&flagPriority != 0 }

// IsAIO is never set by the supported backends.
func (e Event) IsAIO() bool { return e.flags&flagAIO != 0 }

// IsLIO is never set by the supported backends.
func (e Event) IsLIO() bool { return e.flags&flagLIO != 0 }

func (e Event) String() string {
	var b strings.Builder
	b.WriteString(`Event{`)
	b.WriteString(e.token.String())
	b.WriteString(`, `)
	if e.flags == 0 {
		b.WriteString(`NONE`)
	} else {
		first := true
		for _, f := range eventFlagNames {
			if e.flags&f.flag == 0 {
				continue
			}
			if !first {
				b.WriteByte('|')
			}
			first = false
			b.WriteString(f.name)
		}
	}
	b.WriteByte('}')
	return b.String()
}
