package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketNumberExists = errors.New("ticket number already exists")
)

type Ticket struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	TicketNumber     string `gorm:"uniqueIndex:uni_tickets_ticket_number;not null"`
	CountryCode      string `gorm:"size:2"`
	ImageURL         string
	HolderInfo       string
	SocialLink       string
	WalletAddress    string
	PrizeDescription string

	Status     string `gorm:"not null;index"`
	IsWinner   bool   `gorm:"not null;index"`
	IsFeatured bool   `gorm:"not null"`
	IsArchived bool   `gorm:"not null;index"`

	CreatedAt  time.Time `gorm:"not null;index"`
	ArchivedAt *time.Time
}

// TicketFilter narrows List, Count and DeleteMatching. Nil fields are ignored.
type TicketFilter struct {
	Archived       *bool
	Winner         *bool
	Featured       *bool
	NumberContains string
}

func (f TicketFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Archived != nil {
		db = db.Where("is_archived = ?", *f.Archived)
	}
	if f.Winner != nil {
		db = db.Where("is_winner = ?", *f.Winner)
	}
	if f.Featured != nil {
		db = db.Where("is_featured = ?", *f.Featured)
	}
	if f.NumberContains != "" {
		db = db.Where("ticket_number ILIKE ?", "%"+escapeLike(f.NumberContains)+"%")
	}

	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

type txKey struct{}

// Transaction runs fn inside a database transaction. DAO calls made with the context passed to fn
// join that transaction; any error returned by fn rolls it back.
func (d *TicketDAO) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (d *TicketDAO) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}

	return d.db.WithContext(ctx)
}

func (d *TicketDAO) Insert(ctx context.Context, ticket Ticket) (Ticket, error) {
	var existing int64
	if err := d.conn(ctx).Model(&Ticket{}).
		Where("ticket_number = ?", ticket.TicketNumber).
		Count(&existing).Error; err != nil {
		return Ticket{}, err
	}
	if existing > 0 {
		return Ticket{}, ErrTicketNumberExists
	}

	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}

	result := d.conn(ctx).Create(&ticket)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, "uni_tickets_ticket_number") {
			return Ticket{}, ErrTicketNumberExists
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByID(ctx context.Context, id uuid.UUID) (Ticket, error) {
	var ticket Ticket
	result := d.conn(ctx).First(&ticket, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByNumber(ctx context.Context, number string) (Ticket, error) {
	var ticket Ticket
	result := d.conn(ctx).First(&ticket, "ticket_number = ?", number)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) List(ctx context.Context, filter TicketFilter) ([]Ticket, error) {
	var tickets []Ticket
	result := d.conn(ctx).
		Scopes(filter.scope).
		Order("created_at DESC").
		Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

func (d *TicketDAO) Count(ctx context.Context, filter TicketFilter) (int64, error) {
	var n int64
	result := d.conn(ctx).Model(&Ticket{}).Scopes(filter.scope).Count(&n)
	if result.Error != nil {
		return 0, result.Error
	}

	return n, nil
}

// Update writes every mutable column of ticket. ID and CreatedAt are never changed.
func (d *TicketDAO) Update(ctx context.Context, ticket Ticket) (Ticket, error) {
	result := d.conn(ctx).Model(&ticket).
		Select("*").Omit("id", "created_at").
		Updates(&ticket)
	if result.Error != nil {
		return Ticket{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Ticket{}, ErrTicketNotFound
	}

	return ticket, nil
}

func (d *TicketDAO) Delete(ctx context.Context, id uuid.UUID) error {
	result := d.conn(ctx).Delete(&Ticket{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}

	return nil
}

// DeleteMatching removes every ticket matching filter and returns the removed rows.
func (d *TicketDAO) DeleteMatching(ctx context.Context, filter TicketFilter) ([]Ticket, error) {
	var deleted []Ticket
	result := d.conn(ctx).
		Clauses(clause.Returning{}).
		Scopes(filter.scope).
		Delete(&deleted)
	if result.Error != nil {
		return nil, result.Error
	}

	return deleted, nil
}
