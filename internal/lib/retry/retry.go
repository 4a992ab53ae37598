package retry

import (
	"errors"
	"time"
)

// PermanentError stops retrying immediately and surfaces the wrapped error.
type PermanentError struct {
	err error
}

func (e PermanentError) Error() string {
	return e.err.Error()
}

func (e PermanentError) Unwrap() error {
	return e.err
}

func NewPermanentError(err error) error {
	return PermanentError{err: err}
}

// DelayFunc computes the wait before the next attempt. attempt starts at 1.
type DelayFunc func(attempt int, err error) time.Duration

type Option func(*Options)

type Options struct {
	retries   int
	delay     time.Duration
	delayFunc DelayFunc
}

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

func WithDelayFunc(fn DelayFunc) Option {
	return func(o *Options) {
		o.delayFunc = fn
	}
}

// WithDelays retries once per delay, waiting the corresponding amount before
// each new attempt.
func WithDelays(delays ...time.Duration) Option {
	return func(o *Options) {
		o.retries = len(delays)
		o.delayFunc = func(attempt int, _ error) time.Duration {
			return delays[attempt-1]
		}
	}
}

// WithInfiniteDelays walks the given delays and then keeps reusing the last
// one. The retry count still comes from WithRetries.
func WithInfiniteDelays(delays ...time.Duration) Option {
	return func(o *Options) {
		o.delayFunc = func(attempt int, _ error) time.Duration {
			if attempt > len(delays) {
				return delays[len(delays)-1]
			}
			return delays[attempt-1]
		}
	}
}

func Do(f func() error, options ...Option) error {
	_, err := Do2(func() (struct{}, error) {
		return struct{}{}, f()
	}, options...)
	return err
}

func Do2[T any](f func() (T, error), options ...Option) (T, error) {
	opts := &Options{
		retries: 3,
		delay:   time.Second,
	}
	for _, o := range options {
		o(opts)
	}

	var zero T
	var err error
	for attempt := 1; attempt <= opts.retries+1; attempt++ {
		var result T
		result, err = f()
		if err == nil {
			return result, nil
		}

		var perr PermanentError
		if errors.As(err, &perr) {
			return zero, perr.Unwrap()
		}

		if attempt <= opts.retries {
			delay := opts.delay
			if opts.delayFunc != nil {
				delay = opts.delayFunc(attempt, err)
			}
			time.Sleep(delay)
		}
	}
	return zero, err
}
