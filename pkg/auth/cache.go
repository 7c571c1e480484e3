package auth

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/squid-app/squid-api/internal/model"
	"golang.org/x/crypto/blake2b"
)

const cacheKeyPrefix = "authcache:"

// IdentityCache remembers identities resolved from verified tokens.
// Entries live in redis under a hash of the raw token, so tokens are never stored.
type IdentityCache struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

// NewIdentityCache creates a cache whose entries expire after ttl
func NewIdentityCache(rdb redis.Cmdable, ttl time.Duration) *IdentityCache {
	return &IdentityCache{
		rdb: rdb,
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached identity for a token, or nil on a miss
func (c *IdentityCache) Get(ctx context.Context, token Token) (*model.Identity, error) {
	data, err := c.rdb.Get(ctx, cacheKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("identity cache get: %w", err)
	}

	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("identity cache decode: %w", err)
	}
	return &identity, nil
}

// Set stores an identity for a token. expiresAt is the token expiry reported by
// Google, zero when unknown. Nothing is stored once the token has expired.
func (c *IdentityCache) Set(ctx context.Context, token Token, identity *model.Identity, expiresAt time.Time) error {
	ttl := c.ttlFor(token, expiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("identity cache encode: %w", err)
	}
	return c.rdb.Set(ctx, cacheKey(token), data, ttl).Err()
}

// ttlFor clamps the configured TTL to the token expiry. ID tokens without a
// reported expiry fall back to their own exp claim.
func (c *IdentityCache) ttlFor(token Token, expiresAt time.Time) time.Duration {
	if expiresAt.IsZero() && token.Type == TokenTypeID {
		expiresAt, _ = idTokenExpiry(token.Value)
	}

	ttl := c.ttl
	if !expiresAt.IsZero() {
		if remaining := expiresAt.Sub(c.now()); remaining < ttl {
			ttl = remaining
		}
	}
	return ttl
}

// idTokenExpiry reads the exp claim without checking the signature.
// Only used to bound cache lifetime of a token that Google already verified.
func idTokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func cacheKey(token Token) string {
	sum := blake2b.Sum256([]byte(token.Value))
	return cacheKeyPrefix + token.Type.QueryKey() + ":" + hex.EncodeToString(sum[:])
}
