//go:build unix

package iopoll

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testPipe returns a pipe, and the handle of its read end. The handle is
// resolved without calling Fd, which would make the pipe blocking.
func testPipe(t *testing.T) (r, w *os.File, rh Handle) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})
	return r, w, testHandle(t, r)
}

func testHandle(t *testing.T, f *os.File) Handle {
	t.Helper()
	src, err := NewIoSource(f)
	require.NoError(t, err)
	return src.Handle()
}

func testPoll(t *testing.T, opts ...Option) *Poll {
	t.Helper()
	p, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// pollFor polls until events has something, or fails the test.
func pollFor(t *testing.T, p *Poll, events *Events) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, p.Poll(events, 100*time.Millisecond))
		if !events.IsEmpty() {
			return
		}
	}
	t.Fatal(`timed out waiting for events`)
}

func tokensOf(events *Events) []Token {
	var tokens []Token
	for e := range events.All() {
		tokens = append(tokens, e.Token())
	}
	return tokens
}
