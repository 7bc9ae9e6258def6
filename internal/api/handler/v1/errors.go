package v1

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/baylot/raffle-api/internal/api/handler/v1/response"
	"github.com/baylot/raffle-api/internal/auth"
	"github.com/baylot/raffle-api/internal/service"
)

const (
	adminKeyQuery  = "admin_key"
	adminKeyHeader = "X-Admin-Key"
)

// credentials collects every form of admin proof a request may carry.
func credentials(ctx *gin.Context) auth.Credentials {
	creds := auth.Credentials{
		AdminKey: ctx.Query(adminKeyQuery),
	}
	if key := ctx.GetHeader(adminKeyHeader); key != "" {
		creds.AdminKey = key
	}

	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		creds.BearerToken = strings.TrimSpace(token)
	}

	return creds
}

// renderServiceErr maps a service error onto its HTTP rendering. key and value
// name the lookup that failed when the error is a not-found.
func renderServiceErr(ctx *gin.Context, op string, err error, key string, value interface{}) {
	var (
		transportErr *service.TransportError
		rejection    *service.PaymentRejection
	)

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		response.RenderErr(ctx, response.ErrUnauthorized(service.ErrUnauthorized))
	case errors.Is(err, service.ErrTicketNotFound):
		response.RenderErr(ctx, response.ErrNotFound("ticket", key, value))
	case errors.Is(err, service.ErrTransactionNotFound):
		response.RenderErr(ctx, response.ErrNotFound("transaction", key, value))
	case errors.Is(err, service.ErrDuplicateTicketNumber):
		response.RenderErr(ctx, response.ErrConflict(service.ErrDuplicateTicketNumber))
	case errors.Is(err, service.ErrNotAWinner):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrNotAWinner))
	case errors.Is(err, service.ErrMissingImage):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrMissingImage))
	case errors.Is(err, service.ErrInvalidTicketNumber):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidTicketNumber))
	case errors.Is(err, service.ErrNotAnImage):
		response.RenderErr(ctx, response.ErrUnprocessable(service.ErrNotAnImage))
	case errors.Is(err, service.ErrPaymentRequired):
		response.RenderErr(ctx, response.ErrPaymentRequired(service.ErrPaymentRequired))
	case errors.As(err, &rejection):
		response.RenderErr(ctx, response.ErrBadRequest(rejection))
	case errors.As(err, &transportErr):
		response.RenderErr(ctx, response.ErrBadGateway(transportErr))
	case errors.Is(err, service.ErrWalletNotConfigured):
		response.RenderErr(ctx, response.ErrServiceUnavailable(service.ErrWalletNotConfigured))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}
