package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/baylot/raffle-api/internal/domain"
)

type Ticket struct {
	ID               uuid.UUID           `json:"id"`
	TicketNumber     string              `json:"ticket_number"`
	CountryCode      string              `json:"country_code,omitempty"`
	CountryName      string              `json:"country_name,omitempty"`
	Flag             string              `json:"flag,omitempty"`
	ImageURL         string              `json:"image_url"`
	HolderInfo       string              `json:"holder_info,omitempty"`
	SocialLink       string              `json:"social_link,omitempty"`
	WalletAddress    string              `json:"wallet_address,omitempty"`
	PrizeDescription string              `json:"prize_description,omitempty"`
	Status           domain.TicketStatus `json:"status"`
	IsWinner         bool                `json:"is_winner"`
	IsFeatured       bool                `json:"is_featured"`
	IsArchived       bool                `json:"is_archived"`
	CreatedAt        time.Time           `json:"created_at"`
	ArchivedAt       *time.Time          `json:"archived_at,omitempty"`
}

func NewTicket(t domain.Ticket) Ticket {
	out := Ticket{
		ID:               t.ID,
		TicketNumber:     t.TicketNumber,
		CountryCode:      t.CountryCode,
		ImageURL:         t.ImageURL,
		HolderInfo:       t.HolderInfo,
		SocialLink:       t.SocialLink,
		WalletAddress:    t.WalletAddress,
		PrizeDescription: t.PrizeDescription,
		Status:           t.Status,
		IsWinner:         t.IsWinner,
		IsFeatured:       t.IsFeatured,
		IsArchived:       t.IsArchived,
		CreatedAt:        t.CreatedAt,
		ArchivedAt:       t.ArchivedAt,
	}
	if t.CountryCode != "" {
		out.CountryName = domain.CountryName(t.CountryCode)
		out.Flag = domain.FlagEmoji(t.CountryCode)
	}

	return out
}

func NewTickets(tickets []domain.Ticket) []Ticket {
	out := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, NewTicket(t))
	}

	return out
}

type TicketList struct {
	Count   int      `json:"count"`
	Tickets []Ticket `json:"tickets"`
}

func NewTicketList(tickets []domain.Ticket) TicketList {
	return TicketList{Count: len(tickets), Tickets: NewTickets(tickets)}
}

type Confirmation struct {
	Message string `json:"message"`
	Ticket  Ticket `json:"ticket"`
}

type Deleted struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

type AdminToken struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
