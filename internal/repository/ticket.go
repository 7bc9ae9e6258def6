package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/baylot/raffle-api/internal/domain"
	"github.com/baylot/raffle-api/internal/repository/dao"
)

var (
	ErrTicketNotFound     = dao.ErrTicketNotFound
	ErrTicketNumberExists = dao.ErrTicketNumberExists
)

type TicketDAO interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	Insert(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	FindByID(ctx context.Context, id uuid.UUID) (dao.Ticket, error)
	FindByNumber(ctx context.Context, number string) (dao.Ticket, error)
	List(ctx context.Context, filter dao.TicketFilter) ([]dao.Ticket, error)
	Count(ctx context.Context, filter dao.TicketFilter) (int64, error)
	Update(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMatching(ctx context.Context, filter dao.TicketFilter) ([]dao.Ticket, error)
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

func (r *TicketRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.dao.Transaction(ctx, fn)
}

func (r *TicketRepository) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(ticket))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Ticket, error) {
	ticket, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(ticket), nil
}

func (r *TicketRepository) FindByNumber(ctx context.Context, number string) (domain.Ticket, error) {
	ticket, err := r.dao.FindByNumber(ctx, number)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByNumber -> %w", err)
	}

	return r.daoToDomain(ticket), nil
}

func (r *TicketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := r.dao.List(ctx, dao.TicketFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.daosToDomain(tickets), nil
}

func (r *TicketRepository) Count(ctx context.Context, filter domain.TicketFilter) (int64, error) {
	n, err := r.dao.Count(ctx, dao.TicketFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return n, nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	updated, err := r.dao.Update(ctx, r.domainToDAO(ticket))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *TicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *TicketRepository) DeleteMatching(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	deleted, err := r.dao.DeleteMatching(ctx, dao.TicketFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("r.dao.DeleteMatching -> %w", err)
	}

	return r.daosToDomain(deleted), nil
}

func (r *TicketRepository) domainToDAO(t domain.Ticket) dao.Ticket {
	return dao.Ticket{
		ID:               t.ID,
		TicketNumber:     t.TicketNumber,
		CountryCode:      t.CountryCode,
		ImageURL:         t.ImageURL,
		HolderInfo:       t.HolderInfo,
		SocialLink:       t.SocialLink,
		WalletAddress:    t.WalletAddress,
		PrizeDescription: t.PrizeDescription,
		Status:           string(t.Status),
		IsWinner:         t.IsWinner,
		IsFeatured:       t.IsFeatured,
		IsArchived:       t.IsArchived,
		CreatedAt:        t.CreatedAt,
		ArchivedAt:       t.ArchivedAt,
	}
}

func (r *TicketRepository) daoToDomain(t dao.Ticket) domain.Ticket {
	return domain.Ticket{
		ID:               t.ID,
		TicketNumber:     t.TicketNumber,
		CountryCode:      t.CountryCode,
		ImageURL:         t.ImageURL,
		HolderInfo:       t.HolderInfo,
		SocialLink:       t.SocialLink,
		WalletAddress:    t.WalletAddress,
		PrizeDescription: t.PrizeDescription,
		Status:           domain.TicketStatus(t.Status),
		IsWinner:         t.IsWinner,
		IsFeatured:       t.IsFeatured,
		IsArchived:       t.IsArchived,
		CreatedAt:        t.CreatedAt,
		ArchivedAt:       t.ArchivedAt,
	}
}

func (r *TicketRepository) daosToDomain(tickets []dao.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, r.daoToDomain(t))
	}

	return out
}
