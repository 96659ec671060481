//go:build wasip1

package wasi

import (
	"unsafe"
)

//go:wasmimport wasi_snapshot_preview1 poll_oneoff
//go:noescape
func pollOneoff(in, out unsafe.Pointer, nsubscriptions uint32, nevents unsafe.Pointer) uint32

// PollOneoff waits for at least one of in to fire, writing one event per
// fired subscription to out, which must be at least as long as in. It
// returns the number of events written.
//
// An error is returned only if the call as a whole failed. Failures of
// individual subscriptions are reported through [Event.Error].
func PollOneoff(in []Subscription, out []Event) (int, error) {
	if len(in) == 0 || len(out) < len(in) {
		return 0, EINVAL
	}
	subs := make([]byte, len(in)*subscriptionSize)
	encodeSubscriptions(subs, in)
	events := make([]byte, len(in)*eventSize)
	var n uint32
	if errno := Errno(pollOneoff(
		unsafe.Pointer(&subs[0]),
		unsafe.Pointer(&events[0]),
		uint32(len(in)),
		unsafe.Pointer(&n),
	)); errno != ESUCCESS {
		return 0, errno
	}
	decodeEvents(out[:n], events)
	return int(n), nil
}
