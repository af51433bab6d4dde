package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors of the transport layer.
var (
	// ErrNotFound is returned when the provider has no such item.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// RetryableError marks a transient failure. After is the delay the server
// asked for, if any.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// RetryAfter marks err as transient with a server-requested delay.
func RetryAfter(err error, d time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: d}
}

// IsRetryable reports whether err was marked transient.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryAttempts is the number of tries of [DefaultBackoff].
const RetryAttempts = 3

// Backoff retries transient failures with doubling delays.
type Backoff struct {
	Attempts int           // total tries, at least 1
	Delay    time.Duration // wait before the second try
	Max      time.Duration // cap on any single wait; 0 means none
}

// DefaultBackoff is used by the HTTP provider: three tries, one second then
// two seconds apart.
var DefaultBackoff = Backoff{Attempts: RetryAttempts, Delay: time.Second, Max: 30 * time.Second}

// Retry runs fn until it succeeds, returns an error not marked
// [Retryable], or runs out of attempts. The last error is returned. A
// server-requested delay longer than the current one replaces it.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if i == attempts-1 {
			break
		}
		if err := b.wait(ctx, max(delay, re.After)); err != nil {
			return err
		}
		delay *= 2
	}
	return err
}

func (b Backoff) wait(ctx context.Context, d time.Duration) error {
	if b.Max > 0 {
		d = min(d, b.Max)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
