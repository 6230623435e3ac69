package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker suppresses replayed stamp placements, backed by Redis.
// Stamp IDs are client-generated, so a retried POST after a network failure
// carries the same ID; marking seen IDs keeps the retry from double-placing.
// Key format: stamp:<id>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this stamp ID has already been persisted.
func (d *DedupChecker) IsDuplicate(ctx context.Context, stampID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(stampID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this stamp ID has been persisted (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, stampID string) error {
	return d.client.Set(ctx, d.key(stampID), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(stampID string) string {
	return "stamp:" + stampID
}
