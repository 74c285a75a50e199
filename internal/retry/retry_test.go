package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"khata/internal/domain"
	"khata/internal/retry"
)

var fast = retry.Policy{MaxRetries: 5, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"domain sentinel", fmt.Errorf("wrapped: %w", domain.ErrRateLimited), true},
		{"rate limit error", retry.NewRateLimitError("ses", errors.New("busy"), 3), true},
		{"aws throttling", &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}, true},
		{"aws slowdown", fmt.Errorf("s3: %w", &smithy.GenericAPIError{Code: "SlowDown"}), true},
		{"aws other", &smithy.GenericAPIError{Code: "AccessDenied", Message: "no"}, false},
		{"status text", errors.New("request failed with status 429"), true},
		{"message text", errors.New("Rate limit reached for requests"), true},
		{"plain", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retry.IsRateLimited(tt.err))
		})
	}
}

func TestDo_SucceedsAfterThrottling(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fast, func(context.Context) error {
		calls++
		if calls < 3 {
			return domain.ErrRateLimited
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_DoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := retry.Do(context.Background(), fast, func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fast, func(context.Context) error {
		calls++
		return domain.ErrRateLimited
	})

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, fast.MaxRetries+1, calls)
}

func TestDo_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := retry.Policy{MaxRetries: 5, BaseDelay: time.Hour}
	calls := 0

	err := retry.Do(ctx, slow, func(context.Context) error {
		calls++
		cancel()
		return domain.ErrRateLimited
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, retry.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, retry.ParseRetryAfterHeader("soon"))
	assert.Equal(t, 12, retry.ParseRetryAfterHeader("12"))
}
