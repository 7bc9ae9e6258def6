package solana

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/baylot/raffle-api/internal/domain"
)

type PaymentVerifier interface {
	VerifyTransaction(ctx context.Context, txHash string) (domain.PaymentVerdict, error)
}

type VerdictCache interface {
	Get(ctx context.Context, txHash string) (domain.PaymentVerdict, bool, error)
	Set(ctx context.Context, verdict domain.PaymentVerdict, ttl time.Duration) error
}

// CachedVerifier memoises verdicts of confirmed transactions. Cache failures fall through to the RPC node.
type CachedVerifier struct {
	next  PaymentVerifier
	cache VerdictCache
	ttl   time.Duration
}

func NewCachedVerifier(next PaymentVerifier, cache VerdictCache, ttl time.Duration) *CachedVerifier {
	return &CachedVerifier{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func (c *CachedVerifier) VerifyTransaction(ctx context.Context, txHash string) (domain.PaymentVerdict, error) {
	verdict, ok, err := c.cache.Get(ctx, txHash)
	if err != nil {
		zap.L().Warn("verdict cache read failed", zap.String("tx_hash", txHash), zap.Error(err))
	} else if ok {
		return verdict, nil
	}

	verdict, err = c.next.VerifyTransaction(ctx, txHash)
	if err != nil {
		return domain.PaymentVerdict{}, err
	}

	if err = c.cache.Set(ctx, verdict, c.ttl); err != nil {
		zap.L().Warn("verdict cache write failed", zap.String("tx_hash", txHash), zap.Error(err))
	}

	return verdict, nil
}
