//go:build unix || wasip1

package iopoll

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWouldBlock(t *testing.T) {
	assert.True(t, isWouldBlock(syscall.EAGAIN))
	assert.True(t, isWouldBlock(fmt.Errorf("read: %w", syscall.EAGAIN)))
	assert.False(t, isWouldBlock(nil))
	assert.False(t, isWouldBlock(syscall.EINTR))
	assert.False(t, isWouldBlock(syscall.EBADF))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(syscall.EINTR))
	assert.True(t, isRetryable(fmt.Errorf("read: %w", syscall.EINTR)))
	assert.False(t, isRetryable(nil))
	assert.False(t, isRetryable(syscall.EAGAIN))
}
