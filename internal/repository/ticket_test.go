package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/baylot/raffle-api/internal/domain"
	"github.com/baylot/raffle-api/internal/repository/dao"
)

type mockTicketDAO struct {
	mock.Mock
}

func (m *mockTicketDAO) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

func (m *mockTicketDAO) Insert(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error) {
	args := m.Called(ctx, ticket)
	return args.Get(0).(dao.Ticket), args.Error(1)
}

func (m *mockTicketDAO) FindByID(ctx context.Context, id uuid.UUID) (dao.Ticket, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(dao.Ticket), args.Error(1)
}

func (m *mockTicketDAO) FindByNumber(ctx context.Context, number string) (dao.Ticket, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(dao.Ticket), args.Error(1)
}

func (m *mockTicketDAO) List(ctx context.Context, filter dao.TicketFilter) ([]dao.Ticket, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]dao.Ticket), args.Error(1)
}

func (m *mockTicketDAO) Count(ctx context.Context, filter dao.TicketFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTicketDAO) Update(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error) {
	args := m.Called(ctx, ticket)
	return args.Get(0).(dao.Ticket), args.Error(1)
}

func (m *mockTicketDAO) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTicketDAO) DeleteMatching(ctx context.Context, filter dao.TicketFilter) ([]dao.Ticket, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]dao.Ticket), args.Error(1)
}

func TestTicketRepository_Create_MapsFields(t *testing.T) {
	m := &mockTicketDAO{}
	repo := NewTicketRepository(m)
	ctx := context.Background()
	now := time.Now()

	in := domain.Ticket{
		TicketNumber: "A-001",
		CountryCode:  "FR",
		ImageURL:     "/uploaded_tickets/x.png",
		Status:       domain.TicketStatusActive,
	}
	want := dao.Ticket{
		TicketNumber: "A-001",
		CountryCode:  "FR",
		ImageURL:     "/uploaded_tickets/x.png",
		Status:       "active",
	}
	stored := want
	stored.ID = uuid.New()
	stored.CreatedAt = now
	m.On("Insert", ctx, want).Return(stored, nil)

	got, err := repo.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, domain.TicketStatusActive, got.Status)
	assert.Equal(t, now, got.CreatedAt)
	m.AssertExpectations(t)
}

func TestTicketRepository_WrapsSentinels(t *testing.T) {
	m := &mockTicketDAO{}
	repo := NewTicketRepository(m)
	ctx := context.Background()

	m.On("FindByNumber", ctx, "B-404").Return(dao.Ticket{}, dao.ErrTicketNotFound)
	m.On("Insert", ctx, mock.Anything).Return(dao.Ticket{}, dao.ErrTicketNumberExists)

	_, err := repo.FindByNumber(ctx, "B-404")
	assert.ErrorIs(t, err, ErrTicketNotFound)

	_, err = repo.Create(ctx, domain.Ticket{TicketNumber: "A-001"})
	assert.ErrorIs(t, err, ErrTicketNumberExists)
}

func TestTicketRepository_List_PassesFilter(t *testing.T) {
	m := &mockTicketDAO{}
	repo := NewTicketRepository(m)
	ctx := context.Background()
	archived := true

	m.On("List", ctx, dao.TicketFilter{Archived: &archived, NumberContains: "A"}).
		Return([]dao.Ticket{{TicketNumber: "A-001", IsArchived: true}}, nil)

	got, err := repo.List(ctx, domain.TicketFilter{Archived: &archived, NumberContains: "A"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsArchived)
}
