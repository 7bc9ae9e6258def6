package request

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/baylot/raffle-api/internal/domain"
)

const (
	// Ticket numbers travel as a single path segment, so '/' is not allowed,
	// and separators may not repeat.
	ticketNumberPattern  = `^(?!.*[ _#.-]{2})[A-Za-z0-9](?:[A-Za-z0-9 _#.-]{0,62}[A-Za-z0-9])?$`
	walletAddressPattern = `^[1-9A-HJ-NP-Za-km-z]{32,44}$`
)

var (
	ticketNumberExp  = regexp2.MustCompile(ticketNumberPattern, regexp2.None)
	walletAddressExp = regexp2.MustCompile(walletAddressPattern, regexp2.None)

	errInvalidTicketNumber  = errors.New("must be 1-64 letters or digits, optionally split by single ' ', '_', '#', '.' or '-'")
	errInvalidWalletAddress = errors.New("must be a base58 Solana address")
	errInvalidCountryCode   = errors.New("must be a two-letter country code")
)

func matchRule(exp *regexp2.Regexp, errMsg error) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		ok, err := exp.MatchString(s)
		if err != nil || !ok {
			return errMsg
		}

		return nil
	})
}

var countryCodeRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if domain.FlagEmoji(s) == "" {
		return errInvalidCountryCode
	}

	return nil
})

type CreateTicketRequest struct {
	TicketNumber  string `form:"ticket_number"`
	HolderInfo    string `form:"holder_info"`
	SocialLink    string `form:"social_link"`
	WalletAddress string `form:"wallet_address"`
	CountryCode   string `form:"country_code"`
	TxHash        string `form:"tx_hash"`
}

// Normalize trims every field and strips the scanner prefix from the ticket number.
func (req *CreateTicketRequest) Normalize() {
	req.TicketNumber = domain.NormalizeTicketNumber(req.TicketNumber)
	req.HolderInfo = strings.TrimSpace(req.HolderInfo)
	req.SocialLink = strings.TrimSpace(req.SocialLink)
	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	req.CountryCode = strings.ToUpper(strings.TrimSpace(req.CountryCode))
	req.TxHash = strings.TrimSpace(req.TxHash)
}

func (req *CreateTicketRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TicketNumber, validation.Required, matchRule(ticketNumberExp, errInvalidTicketNumber)),
		validation.Field(&req.HolderInfo, validation.Length(0, 500)),
		validation.Field(&req.SocialLink, validation.Length(0, 500), is.URL),
		validation.Field(&req.WalletAddress, matchRule(walletAddressExp, errInvalidWalletAddress)),
		validation.Field(&req.CountryCode, countryCodeRule),
		validation.Field(&req.TxHash, validation.Length(0, 128)),
	)
}

type DeclareWinnerRequest struct {
	PrizeDescription string `form:"prize_description"`
}

func (req *DeclareWinnerRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PrizeDescription, validation.Required, validation.Length(1, 500)),
	)
}

type SetFeaturedRequest struct {
	IsFeatured *bool `form:"is_featured"`
}

func (req *SetFeaturedRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.IsFeatured, validation.NotNil),
	)
}

type SearchRequest struct {
	Number      string `form:"number"`
	WinnersOnly bool   `form:"winners_only"`
}

func (req *SearchRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Number, validation.Length(0, 80)),
	)
}

type CheckTransactionRequest struct {
	TxHash string `form:"tx_hash"`
}

func (req *CheckTransactionRequest) Validate() error {
	req.TxHash = strings.TrimSpace(req.TxHash)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.TxHash, validation.Required),
	)
}
