package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateTicketRequest_Validate_TicketNumber(t *testing.T) {
	tests := []struct {
		number string
		valid  bool
	}{
		{"A-001", true},
		{"A 001", true},
		{"A_001#7.b", true},
		{"7", true},
		{"A/001", false},
		{"A--001", false},
		{"A. 001", false},
		{"-A001", false},
		{"A001.", false},
		{"A:001", false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			req := CreateTicketRequest{TicketNumber: tt.number}
			err := req.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, "TicketNumber")
			}
		})
	}
}

func TestCreateTicketRequest_Normalize(t *testing.T) {
	req := CreateTicketRequest{TicketNumber: "  baylot:A-001 ", CountryCode: " de "}
	req.Normalize()

	assert.Equal(t, "A-001", req.TicketNumber)
	assert.Equal(t, "DE", req.CountryCode)
	assert.NoError(t, req.Validate())
}

func TestCheckTransactionRequest_Validate(t *testing.T) {
	req := CheckTransactionRequest{TxHash: " bad-hash "}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "bad-hash", req.TxHash)

	req = CheckTransactionRequest{TxHash: "  "}
	assert.Error(t, req.Validate())
}
