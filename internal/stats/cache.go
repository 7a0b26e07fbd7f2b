package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"worklens/internal/aggregation/models"
)

const summaryKeyPrefix = "stats:summary:"

// SummaryCache caches the summary aggregate in Redis. The summary touches
// every published row, so dashboards polling it should not hammer the store.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache constructs a cache. Returns nil when client is nil so the
// service can treat an unconfigured cache uniformly.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if client == nil {
		return nil
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// Get returns the cached summary for a country, if present and decodable.
func (c *SummaryCache) Get(ctx context.Context, countryCode string) (*models.StatsSummary, bool) {
	raw, err := c.client.Get(ctx, summaryKeyPrefix+countryCode).Bytes()
	if err != nil {
		return nil, false
	}
	var payload models.StatsSummary
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

// Set stores the summary with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, countryCode string, summary models.StatsSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKeyPrefix+countryCode, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache summary: %w", err)
	}
	return nil
}
