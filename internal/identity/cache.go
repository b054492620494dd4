package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachingVerifier memoizes successful verifications in redis for a short
// TTL so repeated requests with the same token skip the provider round
// trip. Rejections are never cached.
type CachingVerifier struct {
	next Verifier
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachingVerifier(next Verifier, rdb *redis.Client, ttl time.Duration) *CachingVerifier {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingVerifier{next: next, rdb: rdb, ttl: ttl}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "identity:token:" + hex.EncodeToString(sum[:])
}

func (v *CachingVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	key := cacheKey(token)

	if raw, err := v.rdb.Get(ctx, key).Bytes(); err == nil {
		var id Identity
		if err := json.Unmarshal(raw, &id); err == nil && id.ID != "" {
			return id, nil
		}
	}

	id, err := v.next.Verify(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	if raw, err := json.Marshal(id); err == nil {
		// Cache write failures are invisible; the next request verifies again.
		_ = v.rdb.Set(ctx, key, raw, v.ttl).Err()
	}
	return id, nil
}
