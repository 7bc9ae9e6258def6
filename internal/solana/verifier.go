package solana

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/baylot/raffle-api/internal/domain"
)

const SystemProgramID = "11111111111111111111111111111111"

var ErrWalletNotConfigured = errors.New("receiving wallet is not configured")

type Verifier struct {
	client      *Client
	wallet      string
	minLamports uint64
	timeout     time.Duration
}

func NewVerifier(client *Client, wallet string, minLamports uint64, timeout time.Duration) *Verifier {
	return &Verifier{
		client:      client,
		wallet:      wallet,
		minLamports: minLamports,
		timeout:     timeout,
	}
}

// VerifyTransaction checks that txHash contains a system-program transfer of at least
// the minimum amount to the configured wallet. A transaction that exists but does not
// qualify yields a verdict with Valid=false and a nil error.
func (v *Verifier) VerifyTransaction(ctx context.Context, txHash string) (domain.PaymentVerdict, error) {
	txHash = strings.TrimSpace(txHash)
	if v.wallet == "" {
		return domain.PaymentVerdict{}, ErrWalletNotConfigured
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	tx, err := v.client.GetTransaction(ctx, txHash)
	if err != nil {
		return domain.PaymentVerdict{}, fmt.Errorf("v.client.GetTransaction -> %w", err)
	}

	return v.evaluate(txHash, tx), nil
}

func (v *Verifier) evaluate(txHash string, tx gjson.Result) domain.PaymentVerdict {
	verdict := domain.PaymentVerdict{TxHash: txHash}

	if txErr := tx.Get("meta.err"); txErr.Exists() && txErr.Type != gjson.Null {
		verdict.Reason = "transaction failed on chain"
		return verdict
	}

	var best uint64
	matched := false
	visit := func(ix gjson.Result) {
		lamports, ok := v.transferToWallet(ix)
		if !ok {
			return
		}
		matched = true
		if lamports > best {
			best = lamports
		}
	}

	tx.Get("transaction.message.instructions").ForEach(func(_, ix gjson.Result) bool {
		visit(ix)
		return true
	})
	tx.Get("meta.innerInstructions").ForEach(func(_, inner gjson.Result) bool {
		inner.Get("instructions").ForEach(func(_, ix gjson.Result) bool {
			visit(ix)
			return true
		})
		return true
	})

	verdict.Lamports = best
	switch {
	case !matched:
		verdict.Reason = "no transfer to the receiving wallet"
	case best < v.minLamports:
		verdict.Reason = fmt.Sprintf("insufficient amount: %d lamports, need %d", best, v.minLamports)
	default:
		verdict.Valid = true
	}

	return verdict
}

func (v *Verifier) transferToWallet(ix gjson.Result) (uint64, bool) {
	if ix.Get("programId").String() != SystemProgramID {
		return 0, false
	}
	// transfer and transferWithSeed both carry destination and lamports.
	info := ix.Get("parsed.info")
	if info.Get("destination").String() != v.wallet {
		return 0, false
	}
	lamports := info.Get("lamports")
	if !lamports.Exists() {
		return 0, false
	}

	return lamports.Uint(), true
}
