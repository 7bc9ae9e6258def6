package v1

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/baylot/raffle-api/internal/auth"
	"github.com/baylot/raffle-api/internal/domain"
	"github.com/baylot/raffle-api/internal/service"
)

type mockTicketService struct {
	mock.Mock
}

func (m *mockTicketService) CreateTicket(ctx context.Context, creds auth.Credentials, in service.NewTicket) (domain.Ticket, error) {
	args := m.Called(ctx, creds, in)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *mockTicketService) DeclareWinner(ctx context.Context, creds auth.Credentials, number, prize string) (domain.Ticket, error) {
	args := m.Called(ctx, creds, number, prize)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *mockTicketService) SetFeatured(ctx context.Context, creds auth.Credentials, id uuid.UUID, featured bool) (domain.Ticket, error) {
	args := m.Called(ctx, creds, id, featured)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *mockTicketService) Archive(ctx context.Context, creds auth.Credentials, id uuid.UUID) (domain.Ticket, error) {
	args := m.Called(ctx, creds, id)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *mockTicketService) Unarchive(ctx context.Context, creds auth.Credentials, id uuid.UUID) (domain.Ticket, error) {
	args := m.Called(ctx, creds, id)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *mockTicketService) DeleteTicket(ctx context.Context, creds auth.Credentials, id uuid.UUID) error {
	return m.Called(ctx, creds, id).Error(0)
}

func (m *mockTicketService) DeleteAllActive(ctx context.Context, creds auth.Credentials) (int, error) {
	args := m.Called(ctx, creds)
	return args.Int(0), args.Error(1)
}

func (m *mockTicketService) DeleteAllArchived(ctx context.Context, creds auth.Credentials) (int, error) {
	args := m.Called(ctx, creds)
	return args.Int(0), args.Error(1)
}

func (m *mockTicketService) Search(ctx context.Context, number string, winnersOnly bool) (domain.SearchResult, error) {
	args := m.Called(ctx, number, winnersOnly)
	return args.Get(0).(domain.SearchResult), args.Error(1)
}

func (m *mockTicketService) GetTicket(ctx context.Context, id uuid.UUID) (domain.Ticket, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *mockTicketService) ListArchived(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *mockTicketService) ListWinners(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *mockTicketService) ListFeatured(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *mockTicketService) CountTickets(ctx context.Context) (domain.TicketCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.TicketCounts), args.Error(1)
}

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) CheckTransaction(ctx context.Context, txHash string) (domain.PaymentVerdict, error) {
	args := m.Called(ctx, txHash)
	return args.Get(0).(domain.PaymentVerdict), args.Error(1)
}

type mockKeys struct {
	mock.Mock
}

func (m *mockKeys) Authorize(ctx context.Context, creds auth.Credentials) error {
	return m.Called(ctx, creds).Error(0)
}

type stubIssuer struct {
	token     string
	expiresAt time.Time
	err       error
}

func (s stubIssuer) Issue() (string, time.Time, error) {
	return s.token, s.expiresAt, s.err
}

type stubPinger struct {
	err error
}

func (s stubPinger) PingContext(context.Context) error {
	return s.err
}
