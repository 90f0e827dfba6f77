package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

// Cache stores JSON encoded values. Get decodes into dst and returns ErrMiss
// when the key is absent or expired.
type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	KeyBidTypes = "catalog:bid_types"
	KeyBidRates = "catalog:bid_rates:%d"
)
