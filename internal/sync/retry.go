package sync

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"syscall"
	"time"

	"roombooker/internal/domain"
	"roombooker/internal/models"
)

// RetryPolicy defines exponential backoff parameters.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// BaseDelay returns the clamped exponential delay for a given attempt
// (1-based), without jitter.
func (r RetryPolicy) BaseDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}

// NextDelay returns BaseDelay with ±25% uniform jitter applied, so
// simultaneous clients do not retry in lockstep.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	base := r.BaseDelay(attempt)
	jitterRange := int64(float64(base) * 0.25)
	if jitterRange <= 0 {
		return base
	}
	jitter := rand.Int63n(2*jitterRange+1) - jitterRange
	return base + time.Duration(jitter)
}

// IsRetryable classifies which failures are worth another attempt. DNS
// resolution failures, refused connections and timeouts are transient;
// everything else is terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// Retryer runs operations with bounded exponential-backoff retry. The
// backoff wait blocks only the calling goroutine, never the process.
type Retryer struct {
	policy  RetryPolicy
	monitor domain.ConnectivityMonitor
}

// NewRetryer builds a retryer with sane defaults. The monitor is optional;
// without one RunWithNetwork degrades to Run.
func NewRetryer(policy RetryPolicy, monitor domain.ConnectivityMonitor) *Retryer {
	if policy.MaxRetries == 0 {
		policy.MaxRetries = models.DefaultMaxRetries
	}
	if policy.InitialDelay == 0 {
		policy.InitialDelay = time.Second
	}
	if policy.MaxDelay == 0 {
		policy.MaxDelay = 30 * time.Second
	}
	if policy.BackoffFactor == 0 {
		policy.BackoffFactor = 2
	}
	return &Retryer{policy: policy, monitor: monitor}
}

// Policy returns the effective retry policy.
func (r *Retryer) Policy() RetryPolicy { return r.policy }

// Run executes op up to MaxRetries times. A non-retryable error stops
// immediately; the last attempt's error is returned as-is even when it is
// nominally retryable. onAttemptFailed observes each failed non-final
// attempt (1-based).
func (r *Retryer) Run(
	ctx context.Context,
	op func(ctx context.Context) error,
	isRetryable func(error) bool,
	onAttemptFailed func(attempt int, err error),
) error {
	if isRetryable == nil {
		isRetryable = IsRetryable
	}

	var lastErr error
	for attempt := 0; attempt < r.policy.MaxRetries; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		// Final attempt returns as-is without consulting the predicate: a
		// network-gated predicate may block in WaitForNetwork, and there is
		// no retry left to spend the answer on.
		if attempt == r.policy.MaxRetries-1 || !isRetryable(lastErr) {
			return lastErr
		}

		if onAttemptFailed != nil {
			onAttemptFailed(attempt+1, lastErr)
		}

		if err := sleepCtx(ctx, r.policy.NextDelay(attempt+1)); err != nil {
			return lastErr
		}
	}
	return lastErr
}

// RunWithNetwork behaves like Run but gates every retry on connectivity:
// a transient failure while offline waits for the network instead of
// spinning through attempts.
func (r *Retryer) RunWithNetwork(
	ctx context.Context,
	op func(ctx context.Context) error,
	onAttemptFailed func(attempt int, err error),
) error {
	return r.Run(ctx, op, func(err error) bool {
		if !IsRetryable(err) {
			return false
		}
		if r.monitor == nil {
			return true
		}
		if r.monitor.Online() {
			return true
		}
		return r.WaitForNetwork(ctx, r.policy.MaxDelay)
	}, onAttemptFailed)
}

// WaitForNetwork blocks until connectivity is Available or the timeout
// elapses, reporting whether the network came back within the window.
func (r *Retryer) WaitForNetwork(ctx context.Context, timeout time.Duration) bool {
	if r.monitor == nil {
		return true
	}
	if r.monitor.Online() {
		return true
	}

	states, cancel := r.monitor.Subscribe()
	defer cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return false
		case state, ok := <-states:
			if !ok {
				return false
			}
			if state.Online() {
				return true
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
