package retry

import (
	"errors"
	"time"
)

type PermanentError struct {
	err error
}

func (e PermanentError) Error() string {
	return e.err.Error()
}

func (e PermanentError) Unwrap() error {
	return e.err
}

// NewPermanentError marks err so that Do2 stops retrying and returns the cause.
func NewPermanentError(err error) error {
	return PermanentError{err: err}
}

type Option func(*Options)

type Options struct {
	retries int
	delay   time.Duration
}

// WithRetries sets how many times a failed call is repeated after the first attempt.
func WithRetries(retries int) Option {
	return func(o *Options) {
		o.retries = retries
	}
}

func WithDelay(delay time.Duration) Option {
	return func(o *Options) {
		o.delay = delay
	}
}

func Do2[T any](f func() (T, error), options ...Option) (T, error) {
	opts := &Options{
		retries: 2,
		delay:   time.Second,
	}
	for _, o := range options {
		o(opts)
	}

	var (
		res T
		err error
	)
	for i := 0; i <= opts.retries; i++ {
		res, err = f()
		if err == nil {
			return res, nil
		}

		var perr PermanentError
		if errors.As(err, &perr) {
			return res, perr.Unwrap()
		}

		if i < opts.retries && opts.delay > 0 {
			time.Sleep(opts.delay)
		}
	}
	return res, err
}
