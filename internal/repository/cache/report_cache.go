package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-hiring-pipeline/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const reportSummaryKey = "reports:summary"

type reportCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewReportCache stores the report summary in Redis for ttl.
func NewReportCache(client *goredis.Client, ttl time.Duration) domain.ReportCache {
	return &reportCache{client: client, ttl: ttl}
}

// Get returns nil, nil on a cache miss.
func (c *reportCache) Get(ctx context.Context) (*domain.ReportSummary, error) {
	raw, err := c.client.Get(ctx, reportSummaryKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read report cache: %w", err)
	}

	var summary domain.ReportSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("decode report cache: %w", err)
	}
	return &summary, nil
}

func (c *reportCache) Set(ctx context.Context, summary *domain.ReportSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}
	return c.client.Set(ctx, reportSummaryKey, raw, c.ttl).Err()
}
