//go:build unix

package iopoll

import (
	"bytes"
	"strings"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(buf), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(level),
	).Logger()
}

func TestLogging_registration(t *testing.T) {
	var buf bytes.Buffer
	p := testPoll(t, WithLogger(newTestLogger(&buf, logiface.LevelDebug)))
	_, _, rh := testPipe(t)

	require.Contains(t, buf.String(), `"msg":"selector created"`)
	buf.Reset()

	require.NoError(t, p.Registry().RegisterHandle(rh, Token(3), Readable))
	out := buf.String()
	assert.Contains(t, out, `"lvl":"debug"`)
	assert.Contains(t, out, `"op":"register"`)
	assert.Contains(t, out, `"token":"Token(3)"`)
	assert.Contains(t, out, `"interest":"READABLE"`)
	assert.Contains(t, out, `"msg":"registration changed"`)
	buf.Reset()

	require.ErrorIs(t, p.Registry().RegisterHandle(rh, Token(3), Readable), ErrAlreadyRegistered)
	assert.Contains(t, buf.String(), `"msg":"registration failed"`)
	assert.Contains(t, buf.String(), `"err":"iopoll: handle already registered`)
	buf.Reset()

	require.NoError(t, p.Registry().DeregisterHandle(rh))
	assert.Contains(t, buf.String(), `"op":"deregister"`)
	buf.Reset()

	require.NoError(t, p.Close())
	assert.Contains(t, buf.String(), `"msg":"selector closed"`)
}

func TestLogging_levelFiltered(t *testing.T) {
	var buf bytes.Buffer
	p := testPoll(t, WithLogger(newTestLogger(&buf, logiface.LevelInformational)))
	_, _, rh := testPipe(t)

	require.NoError(t, p.Registry().RegisterHandle(rh, Token(1), Readable))
	require.NoError(t, p.Registry().DeregisterHandle(rh))
	assert.Empty(t, strings.TrimSpace(buf.String()))
}

func TestLogging_nilLogger(t *testing.T) {
	p := testPoll(t, WithLogger(nil))
	_, _, rh := testPipe(t)
	require.NoError(t, p.Registry().RegisterHandle(rh, Token(1), Readable))
	require.NoError(t, p.Poll(NewEvents(1), 0))
}
