package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mauv0809/expansion-radar/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps provider results under news:<ticker>.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the redis instance at redisURL and pings it.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func cacheKey(ticker string) string { return "news:" + ticker }

func (r *RedisCache) Get(ctx context.Context, ticker string) ([]models.NewsItem, bool, error) {
	data, err := r.client.Get(ctx, cacheKey(ticker)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []models.NewsItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("decoding cached news: %w", err)
	}
	return items, true, nil
}

func (r *RedisCache) Set(ctx context.Context, ticker string, items []models.NewsItem, ttl time.Duration) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cacheKey(ticker), data, ttl).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
