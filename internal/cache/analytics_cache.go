package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/retailpulse/inventory-intel/internal/config"
	"github.com/retailpulse/inventory-intel/internal/domain"
)

const (
	analyticsKeyPrefix     = "analytics:rows"
	healthKey              = "analytics:health"
	analyticsScanBatchSize = 100
)

// AnalyticsCache fronts the filtered analytics reads and the health summary.
// Every write path of a run ends with InvalidateAll so readers never see rows
// from a previous recompute mixed with new ones.
type AnalyticsCache interface {
	GetAnalytics(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.InventoryAnalyticsRecord, bool, error)
	SetAnalytics(ctx context.Context, filter domain.AnalyticsFilter, rows []domain.InventoryAnalyticsRecord) error
	GetHealth(ctx context.Context) (*domain.InventoryHealth, bool, error)
	SetHealth(ctx context.Context, health domain.InventoryHealth) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalyticsCache{client: client, ttl: ttl}, nil
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) GetAnalytics(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.InventoryAnalyticsRecord, bool, error) {
	key := buildAnalyticsKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rows []domain.InventoryAnalyticsRecord
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("decode analytics cache: %w", err)
	}
	return rows, true, nil
}

func (c *redisAnalyticsCache) SetAnalytics(ctx context.Context, filter domain.AnalyticsFilter, rows []domain.InventoryAnalyticsRecord) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode analytics cache: %w", err)
	}
	if err := c.client.Set(ctx, buildAnalyticsKey(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalyticsCache) GetHealth(ctx context.Context) (*domain.InventoryHealth, bool, error) {
	payload, err := c.client.Get(ctx, healthKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var health domain.InventoryHealth
	if err := json.Unmarshal(payload, &health); err != nil {
		return nil, false, fmt.Errorf("decode health cache: %w", err)
	}
	return &health, true, nil
}

func (c *redisAnalyticsCache) SetHealth(ctx context.Context, health domain.InventoryHealth) error {
	payload, err := json.Marshal(health)
	if err != nil {
		return fmt.Errorf("encode health cache: %w", err)
	}
	if err := c.client.Set(ctx, healthKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, analyticsKeyPrefix, analyticsScanBatchSize); err != nil {
		return err
	}
	return c.client.Del(ctx, healthKey).Err()
}

func (n *noopAnalyticsCache) GetAnalytics(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.InventoryAnalyticsRecord, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetAnalytics(ctx context.Context, filter domain.AnalyticsFilter, rows []domain.InventoryAnalyticsRecord) error {
	return nil
}

func (n *noopAnalyticsCache) GetHealth(ctx context.Context) (*domain.InventoryHealth, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetHealth(ctx context.Context, health domain.InventoryHealth) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildAnalyticsKey(filter domain.AnalyticsFilter) string {
	return fmt.Sprintf("%s:%s", analyticsKeyPrefix, analyticsFilterHash(filter))
}

func analyticsFilterHash(filter domain.AnalyticsFilter) string {
	parts := []string{}

	if filter.ABCClass != "" {
		parts = append(parts, "abc="+strings.ToUpper(strings.TrimSpace(filter.ABCClass)))
	}
	if filter.XYZClass != "" {
		parts = append(parts, "xyz="+strings.ToUpper(strings.TrimSpace(filter.XYZClass)))
	}
	if filter.AnalysisDate != "" {
		parts = append(parts, "date="+strings.TrimSpace(filter.AnalysisDate))
	}
	if len(filter.StoreIDs) > 0 {
		parts = append(parts, "store_ids="+joinInt64s(filter.StoreIDs))
	}
	if len(filter.Articles) > 0 {
		parts = append(parts, "articles="+joinStrings(filter.Articles))
	}
	if filter.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", filter.Page))
	}
	if filter.PageSize > 0 {
		parts = append(parts, fmt.Sprintf("page_size=%d", filter.PageSize))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinInt64s(values []int64) string {
	c := append([]int64(nil), values...)
	sort.Slice(c, func(i, j int) bool { return c[i] < c[j] })
	strs := make([]string, len(c))
	for i, v := range c {
		strs[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(strs, ",")
}

func joinStrings(values []string) string {
	c := append([]string(nil), values...)
	for i := range c {
		c[i] = strings.TrimSpace(strings.ToLower(c[i]))
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
