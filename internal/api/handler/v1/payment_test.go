package v1

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tidwall/gjson"

	"github.com/baylot/raffle-api/internal/domain"
	"github.com/baylot/raffle-api/internal/service"
)

func TestPaymentHandler_HandleCheckTransaction(t *testing.T) {
	valid := strings.Repeat("5", 64)
	short := strings.Repeat("6", 64)
	missing := strings.Repeat("7", 64)
	down := strings.Repeat("8", 64)
	unset := strings.Repeat("9", 64)

	svc := &mockPaymentService{}
	svc.On("CheckTransaction", mock.Anything, valid).
		Return(domain.PaymentVerdict{TxHash: valid, Valid: true, Lamports: 500_000_000}, nil)
	svc.On("CheckTransaction", mock.Anything, short).
		Return(domain.PaymentVerdict{TxHash: short, Lamports: 1, Reason: "insufficient amount: 1 lamports, need 500000000"}, nil)
	svc.On("CheckTransaction", mock.Anything, missing).
		Return(domain.PaymentVerdict{}, fmt.Errorf("s.verifier.VerifyTransaction -> %w", service.ErrTransactionNotFound))
	svc.On("CheckTransaction", mock.Anything, down).
		Return(domain.PaymentVerdict{}, &service.TransportError{Method: "getTransaction", StatusCode: http.StatusTooManyRequests, Message: "rate limited"})
	svc.On("CheckTransaction", mock.Anything, "bad-hash").
		Return(domain.PaymentVerdict{}, fmt.Errorf("s.verifier.VerifyTransaction -> %w", service.ErrTransactionNotFound))
	svc.On("CheckTransaction", mock.Anything, unset).
		Return(domain.PaymentVerdict{}, service.ErrWalletNotConfigured)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/tickets/check-transaction", NewPaymentHandler(svc).HandleCheckTransaction)

	tests := []struct {
		name       string
		txHash     string
		wantStatus int
		wantField  string
		wantValue  string
	}{
		{"valid", valid, http.StatusOK, "status", "success"},
		{"insufficient", short, http.StatusBadRequest, "reason", "insufficient amount: 1 lamports, need 500000000"},
		{"not found", missing, http.StatusNotFound, "error", "transaction with tx_hash=" + missing + " not found"},
		{"malformed hash reaches the node", "bad-hash", http.StatusNotFound, "error", "transaction with tx_hash=bad-hash not found"},
		{"upstream failure", down, http.StatusBadGateway, "status", "Upstream error."},
		{"wallet unset", unset, http.StatusServiceUnavailable, "error", "receiving wallet is not configured"},
		{"missing hash", "", http.StatusBadRequest, "status", "Bad request."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, httptest.NewRequest(http.MethodGet, "/tickets/check-transaction?tx_hash="+tt.txHash, nil))

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantValue, gjson.Get(w.Body.String(), tt.wantField).String())
		})
	}
}
