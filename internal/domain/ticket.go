package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketStatusActive TicketStatus = "active"
	TicketStatusWinner TicketStatus = "winner"
)

// ScannerPrefix is prepended to ticket numbers encoded in the printed QR codes.
const ScannerPrefix = "baylot:"

type Ticket struct {
	ID               uuid.UUID    `json:"id"`
	TicketNumber     string       `json:"ticket_number"`
	CountryCode      string       `json:"country_code,omitempty"`
	ImageURL         string       `json:"image_url"`
	HolderInfo       string       `json:"holder_info,omitempty"`
	SocialLink       string       `json:"social_link,omitempty"`
	WalletAddress    string       `json:"wallet_address,omitempty"`
	PrizeDescription string       `json:"prize_description,omitempty"`
	Status           TicketStatus `json:"status"`
	IsWinner         bool         `json:"is_winner"`
	IsFeatured       bool         `json:"is_featured"`
	IsArchived       bool         `json:"is_archived"`
	CreatedAt        time.Time    `json:"created_at"`
	ArchivedAt       *time.Time   `json:"archived_at,omitempty"`
}

// NormalizeTicketNumber trims raw and strips a leading scanner prefix.
func NormalizeTicketNumber(raw string) string {
	n := strings.TrimSpace(raw)
	n = strings.TrimPrefix(n, ScannerPrefix)

	return strings.TrimSpace(n)
}

// TicketFilter narrows a listing. Nil fields are not filtered on.
type TicketFilter struct {
	Archived       *bool
	Winner         *bool
	Featured       *bool
	NumberContains string
}

type TicketCounts struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Winners  int64 `json:"winners"`
	Featured int64 `json:"featured"`
	Archived int64 `json:"archived"`
}

// SearchResult is what the public lookup returns: the active tickets matching the query and,
// when a number was searched, whether an exact match exists.
type SearchResult struct {
	Number  string   `json:"number,omitempty"`
	Found   bool     `json:"found"`
	Exact   *Ticket  `json:"exact,omitempty"`
	Tickets []Ticket `json:"tickets"`
}
