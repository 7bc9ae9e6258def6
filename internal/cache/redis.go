package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baylot/raffle-api/internal/config"
	"github.com/baylot/raffle-api/internal/domain"
)

const verdictKeyPrefix = "raffle:verdict:"

func NewRedisClient(conf *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
}

// RedisVerdictCache keeps payment verdicts as JSON strings keyed by transaction hash.
type RedisVerdictCache struct {
	client redis.Cmdable
}

func NewRedisVerdictCache(client redis.Cmdable) *RedisVerdictCache {
	return &RedisVerdictCache{client: client}
}

func verdictKey(txHash string) string {
	return verdictKeyPrefix + txHash
}

func (c *RedisVerdictCache) Get(ctx context.Context, txHash string) (domain.PaymentVerdict, bool, error) {
	raw, err := c.client.Get(ctx, verdictKey(txHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PaymentVerdict{}, false, nil
		}

		return domain.PaymentVerdict{}, false, fmt.Errorf("c.client.Get -> %w", err)
	}

	var verdict domain.PaymentVerdict
	if err = json.Unmarshal(raw, &verdict); err != nil {
		return domain.PaymentVerdict{}, false, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return verdict, true, nil
}

func (c *RedisVerdictCache) Set(ctx context.Context, verdict domain.PaymentVerdict, ttl time.Duration) error {
	raw, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err = c.client.Set(ctx, verdictKey(verdict.TxHash), raw, ttl).Err(); err != nil {
		return fmt.Errorf("c.client.Set -> %w", err)
	}

	return nil
}
