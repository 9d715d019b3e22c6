package ports

import (
	"context"
	"time"

	"github.com/norsu/hrportal/internal/core/domain"
)

// SessionStore tracks revoked session tokens until they expire.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RateLimiter counts attempts per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// ChangeFeed fans application change events out to live subscribers.
type ChangeFeed interface {
	Publish(ctx context.Context, event domain.ChangeEvent) error
	// Subscribe returns a channel of raw JSON events that is closed when ctx
	// is done, plus a function releasing the subscription.
	Subscribe(ctx context.Context) (<-chan []byte, func(), error)
}
