package domain

// PaymentVerdict is the outcome of checking an on-chain transfer against the configured wallet.
type PaymentVerdict struct {
	TxHash   string `json:"tx_hash"`
	Valid    bool   `json:"valid"`
	Lamports uint64 `json:"lamports"`
	Reason   string `json:"reason,omitempty"`
}
