package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Stormmysea/stock-website/internal/model"
)

// QuoteCache stores recently fetched quotes so a refresh inside the TTL
// does not hit the upstream API again.
type QuoteCache interface {
	GetQuote(ctx context.Context, symbol string) (*model.Quote, error) // nil, nil on miss
	SetQuote(ctx context.Context, q *model.Quote) error
	Close() error
}

// NoopCache never hits.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (NoopCache) GetQuote(context.Context, string) (*model.Quote, error) { return nil, nil }
func (NoopCache) SetQuote(context.Context, *model.Quote) error           { return nil }
func (NoopCache) Close() error                                           { return nil }

// RedisCache keeps quotes under "quote:<SYMBOL>" with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to addr and verifies the connection.
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func quoteKey(symbol string) string { return "quote:" + symbol }

func (c *RedisCache) GetQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	data, err := c.client.Get(ctx, quoteKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var q model.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("decode cached quote: %w", err)
	}
	return &q, nil
}

func (c *RedisCache) SetQuote(ctx context.Context, q *model.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, quoteKey(q.Symbol), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
