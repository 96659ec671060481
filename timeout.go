package iopoll

import (
	"math"
	"time"
)

// NoTimeout blocks [Poll.Poll] until an event is ready.
const NoTimeout time.Duration = -1

// timeoutMillis converts a poll timeout to milliseconds, rounding up, so that
// a short but non-zero timeout never becomes a busy poll. Negative values
// mean infinite, and are returned as -1.
func timeoutMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	ms := timeout / time.Millisecond
	if timeout%time.Millisecond != 0 {
		ms++
	}
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}
