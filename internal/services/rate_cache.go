package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"simple-bank-api/internal/models"

	goredis "github.com/redis/go-redis/v9"
)

const rateCacheKeyPrefix = "currency_rates:"

// RedisRateCache keeps rate lookups in Redis as JSON with a fixed TTL
type RedisRateCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisRateCache creates a cache backed by client. A zero ttl stores keys without expiry.
func NewRedisRateCache(client *goredis.Client, ttl time.Duration) RateCacheInterface {
	return &RedisRateCache{client: client, ttl: ttl}
}

// Get returns the cached rates for key and whether they were present
func (c *RedisRateCache) Get(ctx context.Context, key string) ([]models.CurrencyRate, bool, error) {
	data, err := c.client.Get(ctx, rateCacheKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read rate cache: %w", err)
	}

	var rates []models.CurrencyRate
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached rates: %w", err)
	}
	return rates, true, nil
}

// Set stores rates under key
func (c *RedisRateCache) Set(ctx context.Context, key string, rates []models.CurrencyRate) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("failed to encode rates: %w", err)
	}
	if err := c.client.Set(ctx, rateCacheKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write rate cache: %w", err)
	}
	return nil
}

// CachedRateProvider serves repeated rate lookups from a cache.
// Cache failures are logged and fall through to the wrapped provider.
type CachedRateProvider struct {
	next    CurrencyRateProviderInterface
	cache   RateCacheInterface
	metrics MetricsRecorderInterface
	logger  *slog.Logger
}

// NewCachedRateProvider wraps next with cache. metrics may be nil.
func NewCachedRateProvider(
	next CurrencyRateProviderInterface,
	cache RateCacheInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) CurrencyRateProviderInterface {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &CachedRateProvider{
		next:    next,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

func (p *CachedRateProvider) GetConversionRates(ctx context.Context, currencyCodes string) ([]models.CurrencyRate, error) {
	key := rateCacheKey(currencyCodes)

	rates, found, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("rate cache read failed", "key", key, "error", err)
	}
	if found {
		p.metrics.IncrementCounter("currency_rate_cache", map[string]string{"result": "hit"})
		return rates, nil
	}
	p.metrics.IncrementCounter("currency_rate_cache", map[string]string{"result": "miss"})

	rates, err = p.next.GetConversionRates(ctx, currencyCodes)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, rates); err != nil {
		p.logger.Warn("rate cache write failed", "key", key, "error", err)
	}

	return rates, nil
}

// rateCacheKey normalizes a code list so equivalent requests share an entry
func rateCacheKey(currencyCodes string) string {
	codes := models.ParseCurrencyCodes(currencyCodes)
	if len(codes) == 0 {
		return "ALL"
	}
	return strings.Join(codes, ",")
}
