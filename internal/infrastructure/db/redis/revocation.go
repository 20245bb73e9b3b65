package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore keeps per-subject token revocation marks in Redis.
// Key format: revoked:<subject> → unix timestamp of the revocation.
// A mark only needs to outlive the tokens it invalidates, so it expires
// after the token TTL.
type RevocationStore struct {
	client *redis.Client
}

// NewRevocationStore creates a RevocationStore wrapping the given client.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Revoke marks all tokens of subject issued before now as invalid.
func (s *RevocationStore) Revoke(ctx context.Context, subject string, ttl time.Duration) error {
	now := time.Now().UTC().Unix()
	return s.client.Set(ctx, s.key(subject), strconv.FormatInt(now, 10), ttl).Err()
}

// RevokedAt returns the subject's most recent revocation mark, or ok=false
// when none is recorded.
func (s *RevocationStore) RevokedAt(ctx context.Context, subject string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, s.key(subject)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("revocation lookup: %w", err)
	}
	ts, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("revocation mark for %s is malformed: %w", subject, err)
	}
	return time.Unix(ts, 0).UTC(), true, nil
}

func (s *RevocationStore) key(subject string) string {
	return "revoked:" + subject
}
