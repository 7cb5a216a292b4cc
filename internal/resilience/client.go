// Package resilience provides the per-collaborator resilience wrapper used
// by every external HTTP collaborator client: cache-first lookup, a minimum
// inter-request interval, retry-with-jitter, and a circuit breaker that
// short-circuits to a caller-supplied empty value after sustained failure
// (§4.2).
//
// Grounded on pkg/external/circuit_breaker.go's ResilientExternalClient:
// cache-first -> breaker.Execute -> on gobreaker.ErrOpenState fall back to
// last-known-cache -> write-through cache on success.
package resilience

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/repurposectl/repurposectl/internal/cache"
)

// RetryPolicy parameterizes the single retry primitive every collaborator
// client composes at its HTTP boundary (§9: "a single retry policy
// primitive parameterized by attempts, base, cap, and jitter").
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Cap      time.Duration
}

// DefaultRetryPolicy is used by collaborators that don't need a tighter budget.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Base: 2 * time.Second, Cap: 15 * time.Second}

// Retry runs fn up to policy.Attempts times, sleeping an exponential,
// jittered backoff between attempts. It stops early if ctx is cancelled.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if attempt > 0 {
			backoff := policy.Base << uint(attempt-1)
			if backoff > policy.Cap || backoff <= 0 {
				backoff = policy.Cap
			}
			jittered := time.Duration(float64(backoff) * (0.5 + rand.Float64()*0.5))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jittered):
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// ClientConfig configures one collaborator's resilience wrapper.
type ClientConfig struct {
	Name string
	// MinInterval is the per-process minimum inter-request interval
	// (§4.2; e.g. 3s for the drug-mechanism DB, 0 to disable).
	MinInterval time.Duration
	// FailureThreshold is the consecutive-failure count that opens the breaker.
	FailureThreshold uint32
	Retry            RetryPolicy
}

// Client wraps one external collaborator with cache, rate limiting, retry,
// and a circuit breaker. Call sites supply a typed fetch function and a
// typed empty fallback; Client handles the resilience plumbing generically
// via JSON payloads stored in the CAC.
type Client struct {
	cfg     ClientConfig
	cac     *cache.CAC
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Logger
}

// New constructs a resilience-wrapped collaborator client.
func New(cfg ClientConfig, cac *cache.CAC, log *logrus.Logger) *Client {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = DefaultRetryPolicy
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	var limiter *rate.Limiter
	if cfg.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"collaborator": name,
				"from_state":   from.String(),
				"to_state":     to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return &Client{cfg: cfg, cac: cac, limiter: limiter, breaker: breaker, log: log}
}

// Fetch executes operation against endpoint/params, routing through the
// cache, rate limiter, retry policy, and circuit breaker. On any sustained
// failure (breaker open, retries exhausted, context cancelled) it returns
// the result of empty() rather than an error — collaborators must never
// crash a stage on their own outage.
func Fetch[T any](ctx context.Context, c *Client, endpoint string, params map[string]any, operation func(ctx context.Context) (T, error), empty func() T) T {
	if cached, ok := c.cac.Get(endpoint, params); ok {
		var v T
		if err := json.Unmarshal(cached, &v); err == nil {
			return v
		}
	}

	result, err := c.breaker.Execute(func() (any, error) {
		if c.limiter != nil {
			if werr := c.limiter.Wait(ctx); werr != nil {
				return nil, werr
			}
		}
		var v T
		rerr := Retry(ctx, c.cfg.Retry, func() error {
			val, ferr := operation(ctx)
			if ferr != nil {
				return ferr
			}
			v = val
			return nil
		})
		return v, rerr
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.log.WithField("collaborator", c.cfg.Name).Warn("circuit breaker open, short-circuiting to empty result")
		} else {
			c.log.WithError(err).WithField("collaborator", c.cfg.Name).Warn("collaborator call failed, returning empty result")
		}
		return empty()
	}

	v := result.(T)
	if buf, merr := json.Marshal(v); merr == nil {
		c.cac.Put(endpoint, params, buf)
	}
	return v
}

// State reports the current breaker state, for health/observability.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
