package iopoll

import (
	"github.com/joeycumines/logiface"
)

// pollOptions holds configuration options for Poll creation.
type pollOptions struct {
	logger            *logiface.Logger[logiface.Event]
	associationChecks bool
}

// Option configures a [Poll] instance.
type Option interface {
	applyPoll(*pollOptions) error
}

// pollOptionImpl implements Option.
type pollOptionImpl struct {
	applyPollFunc func(*pollOptions) error
}

func (o *pollOptionImpl) applyPoll(opts *pollOptions) error {
	return o.applyPollFunc(opts)
}

// WithLogger sets the structured logger used by the Poll, its Registry, and
// any Waker. A nil logger (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &pollOptionImpl{func(opts *pollOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithAssociationChecks sets whether [IoSource] values verify that they are
// always used with the same Poll. A mismatch panics.
// Defaults to true when built with the iopoll_debug tag, false otherwise.
func WithAssociationChecks(enabled bool) Option {
	return &pollOptionImpl{func(opts *pollOptions) error {
		opts.associationChecks = enabled
		return nil
	}}
}

// resolvePollOptions applies Option instances to pollOptions.
func resolvePollOptions(opts []Option) (*pollOptions, error) {
	cfg := &pollOptions{
		associationChecks: defaultAssociationChecks,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyPoll(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
