package iopoll

import (
	"strconv"
)

// Token associates an [Event] with the registration that produced it.
//
// The value is chosen by the caller, and is never interpreted, ordered, or
// deduplicated by this package. Keeping tokens unique is the caller's job.
type Token uint64

func (t Token) String() string {
	return `Token(` + strconv.FormatUint(uint64(t), 10) + `)`
}
