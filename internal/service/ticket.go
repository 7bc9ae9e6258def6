package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/baylot/raffle-api/internal/auth"
	"github.com/baylot/raffle-api/internal/domain"
	"github.com/baylot/raffle-api/internal/imagestore"
	"github.com/baylot/raffle-api/internal/repository"
)

var (
	ErrTicketNotFound        = repository.ErrTicketNotFound
	ErrDuplicateTicketNumber = repository.ErrTicketNumberExists
	ErrUnauthorized          = auth.ErrUnauthorized
	ErrNotAnImage            = imagestore.ErrNotAnImage
	ErrNotAWinner            = errors.New("ticket is not a winner")
	ErrMissingImage          = errors.New("ticket image is required")
	ErrInvalidTicketNumber   = errors.New("ticket number is required")
)

type TicketRepository interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Ticket, error)
	FindByNumber(ctx context.Context, number string) (domain.Ticket, error)
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter domain.TicketFilter) (int64, error)
	Update(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMatching(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
}

type ImageStore interface {
	Save(ctx context.Context, originalName string, data []byte) (string, error)
	Remove(ctx context.Context, url string) error
}

// IssuancePolicy is consulted before a ticket is issued. Returning an error refuses issuance.
type IssuancePolicy interface {
	BeforeIssue(ctx context.Context, ticket NewTicket) error
}

// NewTicket is the input of CreateTicket.
type NewTicket struct {
	TicketNumber  string
	CountryCode   string
	HolderInfo    string
	SocialLink    string
	WalletAddress string
	TxHash        string
	ImageName     string
	Image         []byte
}

type TicketService struct {
	repo     TicketRepository
	images   ImageStore
	gate     auth.Gate
	policies []IssuancePolicy
	now      func() time.Time
}

func NewTicketService(repo TicketRepository, images ImageStore, gate auth.Gate, policies ...IssuancePolicy) *TicketService {
	return &TicketService{
		repo:     repo,
		images:   images,
		gate:     gate,
		policies: policies,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *TicketService) authorize(ctx context.Context, creds auth.Credentials) error {
	if err := s.gate.Authorize(ctx, creds); err != nil {
		return ErrUnauthorized
	}

	return nil
}

func (s *TicketService) CreateTicket(ctx context.Context, creds auth.Credentials, in NewTicket) (domain.Ticket, error) {
	if err := s.authorize(ctx, creds); err != nil {
		return domain.Ticket{}, err
	}

	in.TicketNumber = domain.NormalizeTicketNumber(in.TicketNumber)
	if in.TicketNumber == "" {
		return domain.Ticket{}, ErrInvalidTicketNumber
	}
	if len(in.Image) == 0 {
		return domain.Ticket{}, ErrMissingImage
	}

	if _, err := s.repo.FindByNumber(ctx, in.TicketNumber); err == nil {
		return domain.Ticket{}, ErrDuplicateTicketNumber
	} else if !errors.Is(err, ErrTicketNotFound) {
		return domain.Ticket{}, fmt.Errorf("s.repo.FindByNumber -> %w", err)
	}

	for _, p := range s.policies {
		if err := p.BeforeIssue(ctx, in); err != nil {
			return domain.Ticket{}, fmt.Errorf("p.BeforeIssue -> %w", err)
		}
	}

	imageURL, err := s.images.Save(ctx, in.ImageName, in.Image)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.images.Save -> %w", err)
	}

	var created domain.Ticket
	err = s.repo.Transaction(ctx, func(ctx context.Context) error {
		var txErr error
		created, txErr = s.repo.Create(ctx, domain.Ticket{
			TicketNumber:  in.TicketNumber,
			CountryCode:   strings.ToUpper(strings.TrimSpace(in.CountryCode)),
			ImageURL:      imageURL,
			HolderInfo:    in.HolderInfo,
			SocialLink:    in.SocialLink,
			WalletAddress: in.WalletAddress,
			Status:        domain.TicketStatusActive,
			CreatedAt:     s.now(),
		})

		return txErr
	})
	if err != nil {
		s.removeImage(ctx, imageURL)
		return domain.Ticket{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// DeclareWinner marks the active ticket with the given number as a winner of prize.
func (s *TicketService) DeclareWinner(ctx context.Context, creds auth.Credentials, number, prize string) (domain.Ticket, error) {
	if err := s.authorize(ctx, creds); err != nil {
		return domain.Ticket{}, err
	}

	number = domain.NormalizeTicketNumber(number)

	return s.mutate(ctx, func(ctx context.Context) (domain.Ticket, error) {
		return s.repo.FindByNumber(ctx, number)
	}, func(t *domain.Ticket) error {
		if t.IsArchived {
			return ErrTicketNotFound
		}
		t.IsWinner = true
		t.Status = domain.TicketStatusWinner
		t.PrizeDescription = strings.TrimSpace(prize)

		return nil
	})
}

func (s *TicketService) SetFeatured(ctx context.Context, creds auth.Credentials, id uuid.UUID, featured bool) (domain.Ticket, error) {
	if err := s.authorize(ctx, creds); err != nil {
		return domain.Ticket{}, err
	}

	return s.mutate(ctx, s.byID(id), func(t *domain.Ticket) error {
		t.IsFeatured = featured
		return nil
	})
}

// Archive moves a winning ticket out of the active registry. Archiving an archived
// ticket succeeds and keeps the original archived_at.
func (s *TicketService) Archive(ctx context.Context, creds auth.Credentials, id uuid.UUID) (domain.Ticket, error) {
	if err := s.authorize(ctx, creds); err != nil {
		return domain.Ticket{}, err
	}

	return s.mutate(ctx, s.byID(id), func(t *domain.Ticket) error {
		if !t.IsWinner {
			return ErrNotAWinner
		}
		if t.IsArchived {
			return errUnchanged
		}
		now := s.now()
		t.IsArchived = true
		t.ArchivedAt = &now

		return nil
	})
}

// Unarchive returns a ticket to the active registry. Unarchiving an active ticket is a no-op.
func (s *TicketService) Unarchive(ctx context.Context, creds auth.Credentials, id uuid.UUID) (domain.Ticket, error) {
	if err := s.authorize(ctx, creds); err != nil {
		return domain.Ticket{}, err
	}

	return s.mutate(ctx, s.byID(id), func(t *domain.Ticket) error {
		if !t.IsArchived {
			return errUnchanged
		}
		t.IsArchived = false
		t.ArchivedAt = nil

		return nil
	})
}

func (s *TicketService) DeleteTicket(ctx context.Context, creds auth.Credentials, id uuid.UUID) error {
	if err := s.authorize(ctx, creds); err != nil {
		return err
	}

	var deleted domain.Ticket
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		var txErr error
		if deleted, txErr = s.repo.FindByID(ctx, id); txErr != nil {
			return fmt.Errorf("s.repo.FindByID -> %w", txErr)
		}
		if txErr = s.repo.Delete(ctx, id); txErr != nil {
			return fmt.Errorf("s.repo.Delete -> %w", txErr)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.removeImage(ctx, deleted.ImageURL)

	return nil
}

// DeleteAllActive removes every ticket that is not archived and returns how many were removed.
func (s *TicketService) DeleteAllActive(ctx context.Context, creds auth.Credentials) (int, error) {
	return s.deleteMatching(ctx, creds, false)
}

// DeleteAllArchived removes every archived ticket and returns how many were removed.
func (s *TicketService) DeleteAllArchived(ctx context.Context, creds auth.Credentials) (int, error) {
	return s.deleteMatching(ctx, creds, true)
}

func (s *TicketService) deleteMatching(ctx context.Context, creds auth.Credentials, archived bool) (int, error) {
	if err := s.authorize(ctx, creds); err != nil {
		return 0, err
	}

	var deleted []domain.Ticket
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		var txErr error
		deleted, txErr = s.repo.DeleteMatching(ctx, domain.TicketFilter{Archived: &archived})

		return txErr
	})
	if err != nil {
		return 0, fmt.Errorf("s.repo.DeleteMatching -> %w", err)
	}

	for _, t := range deleted {
		s.removeImage(ctx, t.ImageURL)
	}

	return len(deleted), nil
}

// Search lists active tickets whose number contains number. When number is set,
// Found reports whether an active ticket has exactly that number.
func (s *TicketService) Search(ctx context.Context, number string, winnersOnly bool) (domain.SearchResult, error) {
	number = domain.NormalizeTicketNumber(number)

	active := false
	filter := domain.TicketFilter{Archived: &active, NumberContains: number}
	if winnersOnly {
		winner := true
		filter.Winner = &winner
	}

	tickets, err := s.repo.List(ctx, filter)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	result := domain.SearchResult{Number: number, Tickets: tickets}
	if number == "" {
		return result, nil
	}

	for i := range tickets {
		if tickets[i].TicketNumber == number {
			exact := tickets[i]
			result.Found = true
			result.Exact = &exact
			break
		}
	}

	return result, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id uuid.UUID) (domain.Ticket, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return t, nil
}

func (s *TicketService) GetByNumber(ctx context.Context, number string) (domain.Ticket, error) {
	t, err := s.repo.FindByNumber(ctx, domain.NormalizeTicketNumber(number))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.FindByNumber -> %w", err)
	}

	return t, nil
}

func (s *TicketService) ListArchived(ctx context.Context) ([]domain.Ticket, error) {
	archived := true
	return s.list(ctx, domain.TicketFilter{Archived: &archived})
}

func (s *TicketService) ListWinners(ctx context.Context) ([]domain.Ticket, error) {
	active, winner := false, true
	return s.list(ctx, domain.TicketFilter{Archived: &active, Winner: &winner})
}

func (s *TicketService) ListFeatured(ctx context.Context) ([]domain.Ticket, error) {
	active, featured := false, true
	return s.list(ctx, domain.TicketFilter{Archived: &active, Featured: &featured})
}

func (s *TicketService) list(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return tickets, nil
}

func (s *TicketService) CountTickets(ctx context.Context) (domain.TicketCounts, error) {
	yes, no := true, false
	counts := domain.TicketCounts{}
	targets := []struct {
		dst    *int64
		filter domain.TicketFilter
	}{
		{&counts.Total, domain.TicketFilter{}},
		{&counts.Active, domain.TicketFilter{Archived: &no}},
		{&counts.Winners, domain.TicketFilter{Archived: &no, Winner: &yes}},
		{&counts.Featured, domain.TicketFilter{Archived: &no, Featured: &yes}},
		{&counts.Archived, domain.TicketFilter{Archived: &yes}},
	}
	for _, t := range targets {
		n, err := s.repo.Count(ctx, t.filter)
		if err != nil {
			return domain.TicketCounts{}, fmt.Errorf("s.repo.Count -> %w", err)
		}
		*t.dst = n
	}

	return counts, nil
}

// errUnchanged lets a mutation report that the loaded ticket already has the desired state.
var errUnchanged = errors.New("unchanged")

func (s *TicketService) byID(id uuid.UUID) func(ctx context.Context) (domain.Ticket, error) {
	return func(ctx context.Context) (domain.Ticket, error) {
		return s.repo.FindByID(ctx, id)
	}
}

// mutate loads a ticket, applies change and writes it back inside one transaction.
func (s *TicketService) mutate(
	ctx context.Context,
	load func(ctx context.Context) (domain.Ticket, error),
	change func(t *domain.Ticket) error,
) (domain.Ticket, error) {
	var result domain.Ticket
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		t, err := load(ctx)
		if err != nil {
			return fmt.Errorf("load -> %w", err)
		}

		if err = change(&t); err != nil {
			if errors.Is(err, errUnchanged) {
				result = t
				return nil
			}
			return err
		}

		if result, err = s.repo.Update(ctx, t); err != nil {
			return fmt.Errorf("s.repo.Update -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	return result, nil
}

func (s *TicketService) removeImage(ctx context.Context, url string) {
	if url == "" {
		return
	}

	if err := s.images.Remove(ctx, url); err != nil {
		if errors.Is(err, imagestore.ErrImageNotFound) {
			zap.L().Info("ticket image already gone", zap.String("image_url", url))
			return
		}
		zap.L().Warn("failed to remove ticket image", zap.String("image_url", url), zap.Error(err))
	}
}
