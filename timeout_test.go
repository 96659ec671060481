package iopoll

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutMillis(t *testing.T) {
	for _, tc := range [...]struct {
		timeout time.Duration
		want    int
	}{
		{NoTimeout, -1},
		{-time.Hour, -1},
		{0, 0},
		{time.Nanosecond, 1},
		{time.Millisecond, 1},
		{time.Millisecond + 1, 2},
		{1500 * time.Microsecond, 2},
		{time.Second, 1000},
		{time.Duration(math.MaxInt64), math.MaxInt32},
	} {
		assert.Equal(t, tc.want, timeoutMillis(tc.timeout), tc.timeout.String())
	}
}
