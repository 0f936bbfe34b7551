package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore keeps revoked access-token IDs in Redis. Each entry
// lives exactly as long as the token it blocks, so the set cleans
// itself up. A nil client disables revocation (the service degrades
// the same way it does when caching or rate limiting lose Redis).
type RevocationStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb, prefix: "revoked"}
}

// Revoke blocks the token id for the given remaining lifetime.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s == nil || s.rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, s.prefix+":"+jti, 1, ttl).Err()
}

// IsRevoked reports whether the token id has been revoked. Redis
// errors read as "not revoked" so an outage cannot lock everyone out.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) bool {
	if s == nil || s.rdb == nil || jti == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, s.prefix+":"+jti).Result()
	return err == nil && n > 0
}
