package iopoll

import (
	"github.com/joeycumines/logiface"
)

// logger is nil-safe, a nil value discards everything.
type logger = *logiface.Logger[logiface.Event]

func logRegistration(l logger, op string, sid uint64, h Handle, token Token, interest Interest, err error) {
	b := l.Debug().
		Str(`op`, op).
		Int(`selector`, int(sid)).
		Str(`handle`, h.String()).
		Str(`token`, token.String()).
		Str(`interest`, interest.String())
	if err != nil {
		b.Err(err).Log(`registration failed`)
		return
	}
	b.Log(`registration changed`)
}

func logDeregistration(l logger, sid uint64, h Handle, err error) {
	b := l.Debug().
		Str(`op`, `deregister`).
		Int(`selector`, int(sid)).
		Str(`handle`, h.String())
	if err != nil {
		b.Err(err).Log(`registration failed`)
		return
	}
	b.Log(`registration changed`)
}
