package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-abc/internal/config"
	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	analysisKeyPrefix     = "inventory:analysis"
	analysisScanBatchSize = 100
)

// AnalysisCache stores finished analysis reports keyed by their input table
// and analysis constants.
type AnalysisCache interface {
	GetReport(ctx context.Context, cfg config.AnalysisConfig, items []domain.InventoryItem) (*domain.AnalysisReport, bool, error)
	SetReport(ctx context.Context, cfg config.AnalysisConfig, items []domain.InventoryItem, report *domain.AnalysisReport) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisAnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalysisCache struct{}

func NewAnalysisCache(cfg config.CacheConfig) (AnalysisCache, error) {
	if !cfg.Enabled {
		return &noopAnalysisCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalysisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnalysisCache() AnalysisCache {
	return &noopAnalysisCache{}
}

func (c *redisAnalysisCache) GetReport(ctx context.Context, cfg config.AnalysisConfig, items []domain.InventoryItem) (*domain.AnalysisReport, bool, error) {
	key := buildAnalysisKey(cfg, items)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.AnalysisReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode analysis cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisAnalysisCache) SetReport(ctx context.Context, cfg config.AnalysisConfig, items []domain.InventoryItem, report *domain.AnalysisReport) error {
	key := buildAnalysisKey(cfg, items)
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode analysis cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalysisCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analysisKeyPrefix, analysisScanBatchSize)
}

func (c *redisAnalysisCache) Close() error {
	return c.client.Close()
}

func (n *noopAnalysisCache) GetReport(ctx context.Context, cfg config.AnalysisConfig, items []domain.InventoryItem) (*domain.AnalysisReport, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) SetReport(ctx context.Context, cfg config.AnalysisConfig, items []domain.InventoryItem, report *domain.AnalysisReport) error {
	return nil
}

func (n *noopAnalysisCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (n *noopAnalysisCache) Close() error {
	return nil
}

func buildAnalysisKey(cfg config.AnalysisConfig, items []domain.InventoryItem) string {
	return fmt.Sprintf("%s:%s", analysisKeyPrefix, analysisHash(cfg, items))
}

// analysisHash keeps item order: ties in annual usage are ranked by input
// position, so a reordered table can produce a different report.
func analysisHash(cfg config.AnalysisConfig, items []domain.InventoryItem) string {
	parts := make([]string, 0, len(items)+1)
	parts = append(parts, strings.Join([]string{
		"safety_stock=" + formatFloat(cfg.SafetyStock),
		"ordering_cost=" + formatFloat(cfg.OrderingCost),
		"holding_rate=" + formatFloat(cfg.HoldingRate),
		"class_a=" + formatFloat(cfg.ClassABoundary),
		"class_b=" + formatFloat(cfg.ClassBBoundary),
	}, ","))

	for _, item := range items {
		parts = append(parts, strings.Join([]string{
			strconv.Quote(item.Name),
			formatFloat(item.Quantity),
			formatFloat(item.UnitCost),
			formatFloat(item.LeadTimeDays),
		}, ","))
	}

	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
