package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baylot/raffle-api/internal/api/handler/v1/request"
	"github.com/baylot/raffle-api/internal/api/handler/v1/response"
	"github.com/baylot/raffle-api/internal/domain"
)

type PaymentService interface {
	CheckTransaction(ctx context.Context, txHash string) (domain.PaymentVerdict, error)
}

type PaymentHandler struct {
	svc PaymentService
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{
		svc: svc,
	}
}

// HandleCheckTransaction godoc
// @Summary      Verify a payment transaction
// @Description  Fetches the transaction from the Solana RPC node and checks it pays the receiving wallet enough.
// @Tags         payments
// @Produce      json
// @Param        tx_hash  query     string  true  "Transaction signature"
// @Success      200  {object}  response.TransactionCheck
// @Failure      400  {object}  response.TransactionCheck
// @Failure      404  {object}  response.Err
// @Failure      502  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /tickets/check-transaction [get]
func (h *PaymentHandler) HandleCheckTransaction(ctx *gin.Context) {
	var req request.CheckTransactionRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	verdict, err := h.svc.CheckTransaction(ctx.Request.Context(), req.TxHash)
	if err != nil {
		renderServiceErr(ctx, "HandleCheckTransaction -> h.svc.CheckTransaction", err, "tx_hash", req.TxHash)

		return
	}

	status := http.StatusOK
	if !verdict.Valid {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, response.NewTransactionCheck(verdict))
}
