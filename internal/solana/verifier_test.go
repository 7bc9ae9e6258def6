package solana

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/baylot/raffle-api/internal/domain"
)

const wallet = "BayLotWa11et1111111111111111111111111111111"

func transferIx(program, destination string, lamports uint64) string {
	return fmt.Sprintf(`{"programId":%q,"program":"system","parsed":{"type":"transfer","info":{"source":"Payer111","destination":%q,"lamports":%d}}}`,
		program, destination, lamports)
}

func txResult(outer, inner string) string {
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"result":{"slot":1,"meta":{"err":null,"innerInstructions":[{"index":0,"instructions":[%s]}]},"transaction":{"message":{"instructions":[%s]}}}}`,
		inner, outer)
}

func rpcServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		req := gjson.ParseBytes(raw)
		assert.Equal(t, "getTransaction", req.Get("method").String())
		assert.Equal(t, "jsonParsed", req.Get("params.1.encoding").String())
		assert.Equal(t, int64(0), req.Get("params.1.maxSupportedTransactionVersion").Int())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newVerifier(url string) *Verifier {
	return NewVerifier(NewClient(url, nil), wallet, 500_000_000, 2*time.Second)
}

func TestVerifier_VerifyTransaction(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		valid    bool
		lamports uint64
		reason   string
	}{
		{
			name:     "valid outer transfer",
			body:     txResult(transferIx(SystemProgramID, wallet, 500_000_000), ""),
			valid:    true,
			lamports: 500_000_000,
		},
		{
			name:     "valid inner transfer",
			body:     txResult(`{"programId":"Other1111","parsed":{"type":"call"}}`, transferIx(SystemProgramID, wallet, 700_000_000)),
			valid:    true,
			lamports: 700_000_000,
		},
		{
			name: "valid transfer with seed",
			body: txResult(fmt.Sprintf(`{"programId":%q,"program":"system","parsed":{"type":"transferWithSeed","info":{"source":"Derived111","sourceBase":"Payer111","sourceSeed":"raffle","destination":%q,"lamports":600000000}}}`,
				SystemProgramID, wallet), ""),
			valid:    true,
			lamports: 600_000_000,
		},
		{
			name:   "system instruction without lamports",
			body:   txResult(fmt.Sprintf(`{"programId":%q,"program":"system","parsed":{"type":"assign","info":{"destination":%q}}}`, SystemProgramID, wallet), ""),
			reason: "no transfer to the receiving wallet",
		},
		{
			name:     "insufficient amount",
			body:     txResult(transferIx(SystemProgramID, wallet, 499_999_999), ""),
			lamports: 499_999_999,
			reason:   "insufficient amount: 499999999 lamports, need 500000000",
		},
		{
			name:   "wrong destination",
			body:   txResult(transferIx(SystemProgramID, "Someone1111", 900_000_000), ""),
			reason: "no transfer to the receiving wallet",
		},
		{
			name:   "not the system program",
			body:   txResult(transferIx("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", wallet, 900_000_000), ""),
			reason: "no transfer to the receiving wallet",
		},
		{
			name:   "failed on chain",
			body:   `{"jsonrpc":"2.0","id":1,"result":{"meta":{"err":{"InstructionError":[0,"Custom"]}},"transaction":{"message":{"instructions":[]}}}}`,
			reason: "transaction failed on chain",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := rpcServer(t, http.StatusOK, tt.body)

			verdict, err := newVerifier(srv.URL).VerifyTransaction(context.Background(), " 5sig ")
			require.NoError(t, err)
			assert.Equal(t, "5sig", verdict.TxHash)
			assert.Equal(t, tt.valid, verdict.Valid)
			assert.Equal(t, tt.lamports, verdict.Lamports)
			assert.Equal(t, tt.reason, verdict.Reason)
		})
	}
}

func TestVerifier_NotFound(t *testing.T) {
	srv := rpcServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":null}`)

	_, err := newVerifier(srv.URL).VerifyTransaction(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestVerifier_TransportErrors(t *testing.T) {
	t.Run("rpc error object", func(t *testing.T) {
		srv := rpcServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Invalid param: WrongSize"}}`)

		_, err := newVerifier(srv.URL).VerifyTransaction(context.Background(), "bad")
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, int64(-32602), te.RPCCode)
		assert.Contains(t, te.Error(), "Invalid param")
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := rpcServer(t, http.StatusTooManyRequests, `rate limited`)

		_, err := newVerifier(srv.URL).VerifyTransaction(context.Background(), "sig")
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusTooManyRequests, te.StatusCode)
	})

	t.Run("unreachable node", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newVerifier(url).VerifyTransaction(context.Background(), "sig")
		var te *TransportError
		assert.ErrorAs(t, err, &te)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		t.Cleanup(func() {
			close(release)
			srv.Close()
		})

		v := NewVerifier(NewClient(srv.URL, nil), wallet, 1, 50*time.Millisecond)
		_, err := v.VerifyTransaction(context.Background(), "sig")
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestVerifier_WalletNotConfigured(t *testing.T) {
	v := NewVerifier(NewClient("http://127.0.0.1:0", nil), "", 1, time.Second)

	_, err := v.VerifyTransaction(context.Background(), "sig")
	assert.ErrorIs(t, err, ErrWalletNotConfigured)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyTransaction(ctx context.Context, txHash string) (domain.PaymentVerdict, error) {
	args := m.Called(ctx, txHash)
	return args.Get(0).(domain.PaymentVerdict), args.Error(1)
}

type mapCache struct {
	items   map[string]domain.PaymentVerdict
	failGet bool
}

func (c *mapCache) Get(_ context.Context, txHash string) (domain.PaymentVerdict, bool, error) {
	if c.failGet {
		return domain.PaymentVerdict{}, false, errors.New("cache down")
	}
	v, ok := c.items[txHash]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, v domain.PaymentVerdict, _ time.Duration) error {
	c.items[v.TxHash] = v
	return nil
}

func TestCachedVerifier(t *testing.T) {
	ctx := context.Background()
	next := &mockVerifier{}
	cache := &mapCache{items: map[string]domain.PaymentVerdict{}}
	v := NewCachedVerifier(next, cache, time.Minute)

	verdict := domain.PaymentVerdict{TxHash: "sig", Valid: true, Lamports: 1}
	next.On("VerifyTransaction", ctx, "sig").Return(verdict, nil).Once()
	next.On("VerifyTransaction", ctx, "missing").Return(domain.PaymentVerdict{}, ErrTransactionNotFound).Twice()

	got, err := v.VerifyTransaction(ctx, "sig")
	require.NoError(t, err)
	assert.Equal(t, verdict, got)

	got, err = v.VerifyTransaction(ctx, "sig")
	require.NoError(t, err)
	assert.Equal(t, verdict, got)

	for i := 0; i < 2; i++ {
		_, err = v.VerifyTransaction(ctx, "missing")
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	}

	cache.failGet = true
	next.On("VerifyTransaction", ctx, "sig").Return(verdict, nil).Once()
	_, err = v.VerifyTransaction(ctx, "sig")
	require.NoError(t, err)

	next.AssertExpectations(t)
}
