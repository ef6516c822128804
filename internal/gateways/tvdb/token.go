package tvdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quintans/tvshelf/internal/app"
	"golang.org/x/sync/singleflight"
)

const DefaultTokenTTL = 24 * time.Hour

// Exchanger trades the static API key for a bearer token.
type Exchanger interface {
	Exchange(ctx context.Context) (string, error)
}

// TokenStore persists the token between runs.
type TokenStore interface {
	LoadToken() (string, time.Time, error)
	SaveToken(token string, acquiredAt time.Time) error
}

// TokenCache holds a single bearer token.
// Concurrent callers that find no valid token share one exchange.
type TokenCache struct {
	exchanger Exchanger
	store     TokenStore
	now       func() time.Time
	ttl       time.Duration
	group     singleflight.Group

	mu         sync.RWMutex
	token      string
	acquiredAt time.Time
}

type TokenOption func(*TokenCache)

func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCache) {
		c.now = now
	}
}

// WithTTL sets how long a token is trusted. Zero trusts it until invalidated.
func WithTTL(ttl time.Duration) TokenOption {
	return func(c *TokenCache) {
		c.ttl = ttl
	}
}

func WithTokenStore(store TokenStore) TokenOption {
	return func(c *TokenCache) {
		c.store = store
	}
}

func NewTokenCache(exchanger Exchanger, options ...TokenOption) *TokenCache {
	c := &TokenCache{
		exchanger: exchanger,
		now:       time.Now,
		ttl:       DefaultTokenTTL,
	}
	for _, o := range options {
		o(c)
	}

	if c.store != nil {
		token, acquiredAt, err := c.store.LoadToken()
		if err != nil {
			slog.Warn("Ignoring stored token", "error", err)
		} else {
			c.token = token
			c.acquiredAt = acquiredAt
		}
	}

	return c
}

// Acquire returns the cached token or exchanges the API key for a new one.
func (c *TokenCache) Acquire(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		return token, nil
	}

	// the exchange is shared, so one caller giving up must not fail the others
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("token", func() (any, error) {
		// a flight that just finished may already have stored a token
		if token, ok := c.cached(); ok {
			return token, nil
		}

		token, err := c.exchanger.Exchange(flightCtx)
		if err == nil && token == "" {
			err = errors.New("empty token in login response")
		}
		if err != nil {
			c.set("", time.Time{})
			return "", fmt.Errorf("%w: %w", app.ErrAuthentication, err)
		}

		c.set(token, c.now())
		slog.Debug("Acquired API token")
		return token, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// Invalidate drops the cached token so the next Acquire exchanges again.
func (c *TokenCache) Invalidate() {
	c.set("", time.Time{})
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" {
		return "", false
	}
	if c.ttl > 0 && !c.now().Before(c.acquiredAt.Add(c.ttl)) {
		return "", false
	}
	return c.token, true
}

func (c *TokenCache) set(token string, acquiredAt time.Time) {
	c.mu.Lock()
	c.token = token
	c.acquiredAt = acquiredAt
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.SaveToken(token, acquiredAt); err != nil {
		slog.Warn("Failed to persist token", "error", err)
	}
}
