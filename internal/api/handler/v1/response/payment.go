package response

import "github.com/baylot/raffle-api/internal/domain"

type TransactionCheck struct {
	Status   string `json:"status"`
	Detail   string `json:"detail"`
	TxHash   string `json:"tx_hash"`
	Valid    bool   `json:"valid"`
	Lamports uint64 `json:"lamports"`
	Reason   string `json:"reason,omitempty"`
}

func NewTransactionCheck(v domain.PaymentVerdict) TransactionCheck {
	out := TransactionCheck{
		Status:   "success",
		Detail:   "transaction is valid",
		TxHash:   v.TxHash,
		Valid:    v.Valid,
		Lamports: v.Lamports,
		Reason:   v.Reason,
	}
	if !v.Valid {
		out.Status = "invalid"
		out.Detail = "transaction does not meet the payment requirements"
	}

	return out
}
