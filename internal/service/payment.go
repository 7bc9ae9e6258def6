package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baylot/raffle-api/internal/domain"
	"github.com/baylot/raffle-api/internal/solana"
)

var (
	ErrPaymentRequired = errors.New("a payment transaction hash is required")
	ErrPaymentRejected = errors.New("payment transaction does not qualify")

	ErrTransactionNotFound = solana.ErrTransactionNotFound
	ErrWalletNotConfigured = solana.ErrWalletNotConfigured
)

// TransportError is returned when the payment network could not be reached or answered with an error.
type TransportError = solana.TransportError

type PaymentVerifier interface {
	VerifyTransaction(ctx context.Context, txHash string) (domain.PaymentVerdict, error)
}

// PaymentRejection carries the verifier's reason for refusing a transaction. It matches ErrPaymentRejected.
type PaymentRejection struct {
	Reason string
}

func (e *PaymentRejection) Error() string {
	return fmt.Sprintf("%v: %s", ErrPaymentRejected, e.Reason)
}

func (e *PaymentRejection) Is(target error) bool {
	return target == ErrPaymentRejected
}

// PaymentIssuancePolicy refuses to issue a ticket unless its transaction hash verifies.
type PaymentIssuancePolicy struct {
	verifier PaymentVerifier
}

func NewPaymentIssuancePolicy(verifier PaymentVerifier) *PaymentIssuancePolicy {
	return &PaymentIssuancePolicy{verifier: verifier}
}

func (p *PaymentIssuancePolicy) BeforeIssue(ctx context.Context, ticket NewTicket) error {
	txHash := strings.TrimSpace(ticket.TxHash)
	if txHash == "" {
		return ErrPaymentRequired
	}

	verdict, err := p.verifier.VerifyTransaction(ctx, txHash)
	if err != nil {
		return fmt.Errorf("p.verifier.VerifyTransaction -> %w", err)
	}
	if !verdict.Valid {
		return &PaymentRejection{Reason: verdict.Reason}
	}

	return nil
}

// PaymentService exposes the verifier on its own for the public check endpoint.
type PaymentService struct {
	verifier PaymentVerifier
}

func NewPaymentService(verifier PaymentVerifier) *PaymentService {
	return &PaymentService{verifier: verifier}
}

func (s *PaymentService) CheckTransaction(ctx context.Context, txHash string) (domain.PaymentVerdict, error) {
	verdict, err := s.verifier.VerifyTransaction(ctx, strings.TrimSpace(txHash))
	if err != nil {
		return domain.PaymentVerdict{}, fmt.Errorf("s.verifier.VerifyTransaction -> %w", err)
	}

	return verdict, nil
}
