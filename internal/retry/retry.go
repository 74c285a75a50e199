// Package retry re-runs outbound calls that fail because the remote side is throttling.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"khata/internal/domain"
)

// Policy controls how many times and how long to wait between attempts.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultPolicy is five retries starting at two seconds.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 5, BaseDelay: 2 * time.Second, MaxDelay: time.Minute}
}

// RateLimitError indicates a remote service answered with HTTP 429 or equivalent.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Source     string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Source, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. A non-positive retryAfterSecs leaves RetryAfter unset.
func NewRateLimitError(source string, err error, retryAfterSecs int) *RateLimitError {
	var after time.Duration
	if retryAfterSecs > 0 {
		after = time.Duration(retryAfterSecs) * time.Second
	}
	return &RateLimitError{Err: err, RetryAfter: after, Source: source}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

var throttlingCodes = map[string]bool{
	"Throttling":                             true,
	"ThrottlingException":                    true,
	"ThrottledException":                     true,
	"TooManyRequestsException":               true,
	"RequestLimitExceeded":                   true,
	"RequestThrottled":                       true,
	"SlowDown":                               true,
	"ProvisionedThroughputExceededException": true,
	"LimitExceededException":                 true,
}

// IsRateLimited reports whether err signals throttling.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && throttlingCodes[apiErr.ErrorCode()] {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}

// Do calls fn until it succeeds, fails with a non-throttling error, or retries run out.
// Waits grow exponentially from BaseDelay with up to 25% jitter; a RetryAfter hint wins if longer.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !IsRateLimited(err) || attempt >= p.MaxRetries {
			return err
		}

		wait := p.backoff(attempt)
		var rl *RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > wait {
			wait = rl.RetryAfter
		}

		zerolog.Ctx(ctx).Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("wait", wait).
			Msg("rate limited, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

func (p Policy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		d = p.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	return d + time.Duration(rand.Int64N(int64(d)/4+1))
}
