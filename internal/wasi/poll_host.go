//go:build unix

package wasi

import (
	"errors"
	"math"
	"time"

	"github.com/tetratelabs/wazero/experimental/sys"
	"golang.org/x/sys/unix"
)

// PollOneoff waits for at least one of in to fire, writing one event per
// fired subscription to out, which must be at least as long as in. It
// returns the number of events written.
//
// This is the host emulation, over poll(2). Descriptors that poll reports as
// invalid fail with EBADF, error conditions fail with EIO, and hangups set
// [EventRWFlagsHangup]. A clock fires once its timeout has elapsed, after
// the wait, and only the monotonic and realtime clocks are supported.
//
// An error is returned only if the call as a whole failed. Failures of
// individual subscriptions are reported through [Event.Error].
func PollOneoff(in []Subscription, out []Event) (int, error) {
	if len(in) == 0 || len(out) < len(in) {
		return 0, EINVAL
	}

	start := time.Now()
	var (
		fds      = make([]unix.PollFd, 0, len(in))
		fdSubs   = make([]int, 0, len(in))
		clocks   []int
		deadline = time.Duration(-1)
		n        int
	)
	for i, s := range in {
		switch s.typ {
		case EventTypeClock:
			d, err := clockTimeout(s.clock, start)
			if err != ESUCCESS {
				out[n] = Event{Userdata: s.userdata, Type: s.typ, Error: err}
				n++
				continue
			}
			clocks = append(clocks, i)
			if deadline < 0 || d < deadline {
				deadline = d
			}
		case EventTypeFdRead, EventTypeFdWrite:
			events := int16(unix.POLLIN)
			if s.typ == EventTypeFdWrite {
				events = unix.POLLOUT
			}
			fds = append(fds, unix.PollFd{Fd: int32(s.fd), Events: events})
			fdSubs = append(fdSubs, i)
		default:
			out[n] = Event{Userdata: s.userdata, Type: s.typ, Error: EINVAL}
			n++
		}
	}

	timeout := -1
	waitForClock := n == 0 && deadline >= 0
	switch {
	case n != 0:
		// already have something to report
		timeout = 0
	case waitForClock:
		timeout = durationMillis(deadline)
	}

	ready, err := unix.Poll(fds, timeout)
	if err != nil {
		return 0, toErrno(err)
	}

	if ready != 0 {
		for j := range fds {
			revents := fds[j].Revents
			if revents == 0 {
				continue
			}
			s := in[fdSubs[j]]
			ev := Event{Userdata: s.userdata, Type: s.typ}
			switch {
			case revents&unix.POLLNVAL != 0:
				ev.Error = EBADF
			case revents&unix.POLLERR != 0:
				ev.Error = EIO
			case revents&unix.POLLHUP != 0:
				ev.FdReadWrite.Flags = EventRWFlagsHangup
			case s.typ == EventTypeFdRead:
				ev.FdReadWrite.NBytes = pendingBytes(int(s.fd))
			}
			out[n] = ev
			n++
		}
	}

	// with nothing else ready, poll returning means the earliest clock fired
	elapsed := time.Since(start)
	for _, i := range clocks {
		s := in[i]
		d, _ := clockTimeout(s.clock, start)
		if d <= elapsed || (waitForClock && ready == 0 && d <= deadline) {
			out[n] = Event{Userdata: s.userdata, Type: EventTypeClock}
			n++
		}
	}

	return n, nil
}

// clockTimeout resolves a clock subscription to a timeout relative to now.
func clockTimeout(clock SubscriptionClock, now time.Time) (time.Duration, Errno) {
	timeout := time.Duration(min(clock.Timeout, math.MaxInt64))
	if clock.Flags&SubClockFlagsAbstime == 0 {
		return timeout, ESUCCESS
	}
	switch clock.ID {
	case ClockIDRealtime:
		return max(time.Unix(0, int64(timeout)).Sub(now), 0), ESUCCESS
	default:
		// no portable mapping of an absolute monotonic time
		return 0, ENOTSUP
	}
}

func durationMillis(d time.Duration) int {
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	return int(min(ms, math.MaxInt32))
}

// toErrno normalizes a host error to its WASI errno.
func toErrno(err error) Errno {
	var errno Errno
	if errors.As(err, &errno) {
		return errno
	}
	switch sys.UnwrapOSError(err) {
	case 0:
		return ESUCCESS
	case sys.EACCES:
		return EACCES
	case sys.EAGAIN:
		return EAGAIN
	case sys.EBADF:
		return EBADF
	case sys.EEXIST:
		return EEXIST
	case sys.EFAULT:
		return EFAULT
	case sys.EINTR:
		return EINTR
	case sys.EINVAL:
		return EINVAL
	case sys.ENOENT:
		return ENOENT
	case sys.ENOSYS:
		return ENOSYS
	case sys.ENOTSOCK:
		return ENOTSOCK
	case sys.ENOTSUP:
		return ENOTSUP
	case sys.EPERM:
		return EPERM
	default:
		return EIO
	}
}
