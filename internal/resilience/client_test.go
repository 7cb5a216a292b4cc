package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repurposectl/repurposectl/internal/cache"
)

type probeResult struct {
	Hits int `json:"hits"`
}

func newTestClient(t *testing.T, cfg ClientConfig) *Client {
	t.Helper()
	cac, err := cache.New(t.TempDir(), logrus.New())
	require.NoError(t, err)
	cfg.Retry = RetryPolicy{Attempts: 1, Base: time.Millisecond, Cap: time.Millisecond}
	return New(cfg, cac, logrus.New())
}

func TestFetch_CachesSuccessfulResult(t *testing.T) {
	c := newTestClient(t, ClientConfig{Name: "probe"})
	calls := 0
	op := func(ctx context.Context) (probeResult, error) {
		calls++
		return probeResult{Hits: 7}, nil
	}
	empty := func() probeResult { return probeResult{} }

	ctx := context.Background()
	got := Fetch(ctx, c, "probe/search", map[string]any{"q": "x"}, op, empty)
	assert.Equal(t, 7, got.Hits)
	assert.Equal(t, 1, calls)

	got2 := Fetch(ctx, c, "probe/search", map[string]any{"q": "x"}, op, empty)
	assert.Equal(t, 7, got2.Hits)
	assert.Equal(t, 1, calls, "second call should be served from cache, not re-invoke operation")
}

func TestFetch_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	c := newTestClient(t, ClientConfig{Name: "flaky", FailureThreshold: 2})
	calls := 0
	op := func(ctx context.Context) (probeResult, error) {
		calls++
		return probeResult{}, errors.New("boom")
	}
	empty := func() probeResult { return probeResult{Hits: -1} }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got := Fetch(ctx, c, "flaky/search", map[string]any{"q": i}, op, empty)
		assert.Equal(t, -1, got.Hits)
	}

	callsBeforeOpen := calls
	got := Fetch(ctx, c, "flaky/search", map[string]any{"q": 999}, op, empty)
	assert.Equal(t, -1, got.Hits)
	assert.Equal(t, callsBeforeOpen, calls, "breaker should short-circuit without invoking operation")
}

func TestFetch_EmptyOnFinalFailure(t *testing.T) {
	c := newTestClient(t, ClientConfig{Name: "always-fails", FailureThreshold: 100})
	op := func(ctx context.Context) (probeResult, error) {
		return probeResult{}, errors.New("nope")
	}
	empty := func() probeResult { return probeResult{Hits: -1} }

	got := Fetch(context.Background(), c, "fails/search", map[string]any{}, op, empty)
	assert.Equal(t, -1, got.Hits)
}
