package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/baylot/raffle-api/internal/api/handler/v1/request"
	"github.com/baylot/raffle-api/internal/api/handler/v1/response"
	"github.com/baylot/raffle-api/internal/auth"
	"github.com/baylot/raffle-api/internal/domain"
	"github.com/baylot/raffle-api/internal/service"
)

type TicketService interface {
	CreateTicket(ctx context.Context, creds auth.Credentials, in service.NewTicket) (domain.Ticket, error)
	DeclareWinner(ctx context.Context, creds auth.Credentials, number, prize string) (domain.Ticket, error)
	SetFeatured(ctx context.Context, creds auth.Credentials, id uuid.UUID, featured bool) (domain.Ticket, error)
	Archive(ctx context.Context, creds auth.Credentials, id uuid.UUID) (domain.Ticket, error)
	Unarchive(ctx context.Context, creds auth.Credentials, id uuid.UUID) (domain.Ticket, error)
	DeleteTicket(ctx context.Context, creds auth.Credentials, id uuid.UUID) error
	DeleteAllActive(ctx context.Context, creds auth.Credentials) (int, error)
	DeleteAllArchived(ctx context.Context, creds auth.Credentials) (int, error)
	Search(ctx context.Context, number string, winnersOnly bool) (domain.SearchResult, error)
	GetTicket(ctx context.Context, id uuid.UUID) (domain.Ticket, error)
	ListArchived(ctx context.Context) ([]domain.Ticket, error)
	ListWinners(ctx context.Context) ([]domain.Ticket, error)
	ListFeatured(ctx context.Context) ([]domain.Ticket, error)
	CountTickets(ctx context.Context) (domain.TicketCounts, error)
}

type TicketHandler struct {
	svc            TicketService
	maxUploadBytes int64
}

func NewTicketHandler(svc TicketService, maxUploadBytes int64) *TicketHandler {
	return &TicketHandler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
	}
}

func ticketID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("ticket"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid ticket id %q", ctx.Param("ticket"))))

		return uuid.Nil, false
	}

	return id, true
}

// HandleCreateTicket godoc
// @Summary      Issue a ticket
// @Description  Stores the uploaded image and issues a ticket. Browsers get the success page.
// @Tags         tickets
// @Accept       multipart/form-data
// @Produce      json,html
// @Param        admin_key       query     string  false  "Admin key"
// @Param        ticket_number   formData  string  true   "Ticket number, a leading baylot: prefix is stripped"
// @Param        country_code    formData  string  false  "ISO 3166 alpha-2 country code"
// @Param        holder_info     formData  string  false  "Holder information"
// @Param        social_link     formData  string  false  "Holder social link"
// @Param        wallet_address  formData  string  false  "Holder Solana wallet"
// @Param        tx_hash         formData  string  false  "Payment transaction signature"
// @Param        file            formData  file    true   "Ticket image"
// @Success      201  {object}  response.Ticket
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      413  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/create [post]
// @Security     AdminKey
func (h *TicketHandler) HandleCreateTicket(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, h.maxUploadBytes)

	var req request.CreateTicketRequest
	if err := ctx.ShouldBind(&req); err != nil {
		renderBindErr(ctx, err)

		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrMissingImage))

			return
		}

		renderBindErr(ctx, err)

		return
	}

	image, err := readUpload(fileHeader)
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("HandleCreateTicket -> readUpload -> %w", err)))

		return
	}

	ticket, err := h.svc.CreateTicket(ctx.Request.Context(), credentials(ctx), service.NewTicket{
		TicketNumber:  req.TicketNumber,
		CountryCode:   req.CountryCode,
		HolderInfo:    req.HolderInfo,
		SocialLink:    req.SocialLink,
		WalletAddress: req.WalletAddress,
		TxHash:        req.TxHash,
		ImageName:     fileHeader.Filename,
		Image:         image,
	})
	if err != nil {
		renderServiceErr(ctx, "HandleCreateTicket -> h.svc.CreateTicket", err, "tx_hash", req.TxHash)

		return
	}

	if response.WantsHTML(ctx) {
		ctx.HTML(http.StatusCreated, "ticket_success.html", gin.H{"Ticket": ticket})

		return
	}

	ctx.JSON(http.StatusCreated, response.NewTicket(ticket))
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("fh.Open -> %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll -> %w", err)
	}

	return data, nil
}

func renderBindErr(ctx *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.RenderErr(ctx, response.ErrPayloadTooLarge(tooLarge.Limit))

		return
	}

	response.RenderErr(ctx, response.ErrBadRequest(err))
}

// HandleSearchTicket godoc
// @Summary      Look up a ticket by number
// @Tags         tickets
// @Produce      json,html
// @Param        number        query     string  true   "Ticket number"
// @Param        winners_only  query     bool    false  "Only match winning tickets"
// @Success      200  {object}  response.Ticket
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/search [get]
func (h *TicketHandler) HandleSearchTicket(ctx *gin.Context) {
	var req request.SearchRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	req.Number = domain.NormalizeTicketNumber(req.Number)
	if req.Number == "" {
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidTicketNumber))

		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	result, err := h.svc.Search(ctx.Request.Context(), req.Number, req.WinnersOnly)
	if err != nil {
		renderServiceErr(ctx, "HandleSearchTicket -> h.svc.Search", err, "number", req.Number)

		return
	}
	if !result.Found {
		response.RenderErr(ctx, response.ErrNotFound("ticket", "number", req.Number))

		return
	}

	if response.WantsHTML(ctx) {
		ctx.HTML(http.StatusOK, "ticket.html", gin.H{"Ticket": result.Exact})

		return
	}

	ctx.JSON(http.StatusOK, response.NewTicket(*result.Exact))
}

// HandleListTicketsHTML godoc
// @Summary      Render the ticket listing page
// @Tags         pages
// @Produce      html
// @Param        number        query  string  false  "Number fragment to filter on"
// @Param        winners_only  query  bool    false  "Only list winning tickets"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/all/html [get]
func (h *TicketHandler) HandleListTicketsHTML(ctx *gin.Context) {
	var req request.SearchRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	result, err := h.svc.Search(ctx.Request.Context(), req.Number, req.WinnersOnly)
	if err != nil {
		renderServiceErr(ctx, "HandleListTicketsHTML -> h.svc.Search", err, "number", req.Number)

		return
	}

	ctx.HTML(http.StatusOK, "list.html", gin.H{
		"Number":      result.Number,
		"Found":       result.Found,
		"WinnersOnly": req.WinnersOnly,
		"Tickets":     result.Tickets,
	})
}

// HandleGetTicket godoc
// @Summary      Get a ticket by id
// @Tags         tickets
// @Produce      json,html
// @Param        ticket  path  string  true  "Ticket id"
// @Success      200  {object}  response.Ticket
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticket} [get]
func (h *TicketHandler) HandleGetTicket(ctx *gin.Context) {
	id, ok := ticketID(ctx)
	if !ok {
		return
	}

	ticket, err := h.svc.GetTicket(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "HandleGetTicket -> h.svc.GetTicket", err, "id", id)

		return
	}

	if response.WantsHTML(ctx) {
		ctx.HTML(http.StatusOK, "ticket.html", gin.H{"Ticket": ticket})

		return
	}

	ctx.JSON(http.StatusOK, response.NewTicket(ticket))
}

// HandleDeclareWinner godoc
// @Summary      Declare a ticket a winner
// @Tags         tickets
// @Produce      json
// @Param        ticket             path   string  true   "Ticket number"
// @Param        prize_description  query  string  true   "Prize won"
// @Param        admin_key          query  string  false  "Admin key"
// @Success      200  {object}  response.Confirmation
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticket}/winner [put]
// @Security     AdminKey
func (h *TicketHandler) HandleDeclareWinner(ctx *gin.Context) {
	number := domain.NormalizeTicketNumber(ctx.Param("ticket"))

	var req request.DeclareWinnerRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	ticket, err := h.svc.DeclareWinner(ctx.Request.Context(), credentials(ctx), number, req.PrizeDescription)
	if err != nil {
		renderServiceErr(ctx, "HandleDeclareWinner -> h.svc.DeclareWinner", err, "number", number)

		return
	}

	ctx.JSON(http.StatusOK, response.Confirmation{
		Message: fmt.Sprintf("ticket %s declared a winner", ticket.TicketNumber),
		Ticket:  response.NewTicket(ticket),
	})
}

// HandleSetFeatured godoc
// @Summary      Feature or unfeature a ticket
// @Tags         tickets
// @Produce      json
// @Param        ticket       path   string  true   "Ticket id"
// @Param        is_featured  query  bool    true   "Featured flag"
// @Param        admin_key    query  string  false  "Admin key"
// @Success      200  {object}  response.Confirmation
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticket}/feature [put]
// @Security     AdminKey
func (h *TicketHandler) HandleSetFeatured(ctx *gin.Context) {
	id, ok := ticketID(ctx)
	if !ok {
		return
	}

	var req request.SetFeaturedRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	ticket, err := h.svc.SetFeatured(ctx.Request.Context(), credentials(ctx), id, *req.IsFeatured)
	if err != nil {
		renderServiceErr(ctx, "HandleSetFeatured -> h.svc.SetFeatured", err, "id", id)

		return
	}

	msg := "ticket featured"
	if !ticket.IsFeatured {
		msg = "ticket unfeatured"
	}
	ctx.JSON(http.StatusOK, response.Confirmation{Message: msg, Ticket: response.NewTicket(ticket)})
}

// HandleArchiveTicket godoc
// @Summary      Archive a winning ticket
// @Tags         tickets
// @Produce      json
// @Param        ticket     path   string  true   "Ticket id"
// @Param        admin_key  query  string  false  "Admin key"
// @Success      200  {object}  response.Confirmation
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticket}/archive [post]
// @Security     AdminKey
func (h *TicketHandler) HandleArchiveTicket(ctx *gin.Context) {
	id, ok := ticketID(ctx)
	if !ok {
		return
	}

	ticket, err := h.svc.Archive(ctx.Request.Context(), credentials(ctx), id)
	if err != nil {
		renderServiceErr(ctx, "HandleArchiveTicket -> h.svc.Archive", err, "id", id)

		return
	}

	ctx.JSON(http.StatusOK, response.Confirmation{Message: "ticket archived", Ticket: response.NewTicket(ticket)})
}

// HandleUnarchiveTicket godoc
// @Summary      Restore an archived ticket
// @Tags         tickets
// @Produce      json
// @Param        ticket     path   string  true   "Ticket id"
// @Param        admin_key  query  string  false  "Admin key"
// @Success      200  {object}  response.Confirmation
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticket}/unarchive [post]
// @Security     AdminKey
func (h *TicketHandler) HandleUnarchiveTicket(ctx *gin.Context) {
	id, ok := ticketID(ctx)
	if !ok {
		return
	}

	ticket, err := h.svc.Unarchive(ctx.Request.Context(), credentials(ctx), id)
	if err != nil {
		renderServiceErr(ctx, "HandleUnarchiveTicket -> h.svc.Unarchive", err, "id", id)

		return
	}

	ctx.JSON(http.StatusOK, response.Confirmation{Message: "ticket unarchived", Ticket: response.NewTicket(ticket)})
}

// HandleDeleteTicket godoc
// @Summary      Delete a ticket and its image
// @Tags         tickets
// @Produce      json
// @Param        ticket     path   string  true   "Ticket id"
// @Param        admin_key  query  string  false  "Admin key"
// @Success      200  {object}  response.Deleted
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticket} [delete]
// @Security     AdminKey
func (h *TicketHandler) HandleDeleteTicket(ctx *gin.Context) {
	id, ok := ticketID(ctx)
	if !ok {
		return
	}

	if err := h.svc.DeleteTicket(ctx.Request.Context(), credentials(ctx), id); err != nil {
		renderServiceErr(ctx, "HandleDeleteTicket -> h.svc.DeleteTicket", err, "id", id)

		return
	}

	ctx.JSON(http.StatusOK, response.Deleted{Message: "ticket deleted", Deleted: 1})
}

// HandleDeleteAllActive godoc
// @Summary      Delete every active ticket
// @Tags         tickets
// @Produce      json
// @Param        X-Admin-Key  header  string  false  "Admin key"
// @Success      200  {object}  response.Deleted
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/all [delete]
// @Security     AdminKeyHeader
func (h *TicketHandler) HandleDeleteAllActive(ctx *gin.Context) {
	n, err := h.svc.DeleteAllActive(ctx.Request.Context(), credentials(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleDeleteAllActive -> h.svc.DeleteAllActive", err, "", nil)

		return
	}

	ctx.JSON(http.StatusOK, response.Deleted{Message: "active tickets deleted", Deleted: n})
}

// HandleDeleteAllArchived godoc
// @Summary      Delete every archived ticket
// @Tags         tickets
// @Produce      json
// @Param        X-Admin-Key  header  string  false  "Admin key"
// @Success      200  {object}  response.Deleted
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/archived/all [delete]
// @Security     AdminKeyHeader
func (h *TicketHandler) HandleDeleteAllArchived(ctx *gin.Context) {
	n, err := h.svc.DeleteAllArchived(ctx.Request.Context(), credentials(ctx))
	if err != nil {
		renderServiceErr(ctx, "HandleDeleteAllArchived -> h.svc.DeleteAllArchived", err, "", nil)

		return
	}

	ctx.JSON(http.StatusOK, response.Deleted{Message: "archived tickets deleted", Deleted: n})
}

// HandleCountTickets godoc
// @Summary      Count tickets per state
// @Tags         tickets
// @Produce      json
// @Success      200  {object}  domain.TicketCounts
// @Failure      500  {object}  response.Err
// @Router       /tickets/count [get]
func (h *TicketHandler) HandleCountTickets(ctx *gin.Context) {
	counts, err := h.svc.CountTickets(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "HandleCountTickets -> h.svc.CountTickets", err, "", nil)

		return
	}

	ctx.JSON(http.StatusOK, counts)
}

// HandleListArchived godoc
// @Summary      List archived tickets
// @Tags         tickets
// @Produce      json
// @Success      200  {object}  response.TicketList
// @Failure      500  {object}  response.Err
// @Router       /tickets/archived [get]
func (h *TicketHandler) HandleListArchived(ctx *gin.Context) {
	h.renderList(ctx, "HandleListArchived -> h.svc.ListArchived", h.svc.ListArchived)
}

// HandleListWinners godoc
// @Summary      List active winning tickets
// @Tags         tickets
// @Produce      json
// @Success      200  {object}  response.TicketList
// @Failure      500  {object}  response.Err
// @Router       /tickets/winners [get]
func (h *TicketHandler) HandleListWinners(ctx *gin.Context) {
	h.renderList(ctx, "HandleListWinners -> h.svc.ListWinners", h.svc.ListWinners)
}

// HandleListFeatured godoc
// @Summary      List active featured tickets
// @Tags         tickets
// @Produce      json
// @Success      200  {object}  response.TicketList
// @Failure      500  {object}  response.Err
// @Router       /tickets/featured [get]
func (h *TicketHandler) HandleListFeatured(ctx *gin.Context) {
	h.renderList(ctx, "HandleListFeatured -> h.svc.ListFeatured", h.svc.ListFeatured)
}

func (h *TicketHandler) renderList(ctx *gin.Context, op string, list func(context.Context) ([]domain.Ticket, error)) {
	tickets, err := list(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, op, err, "", nil)

		return
	}

	ctx.JSON(http.StatusOK, response.NewTicketList(tickets))
}

// HandleShowcase renders the public home page with winners and featured tickets.
func (h *TicketHandler) HandleShowcase(ctx *gin.Context) {
	winners, err := h.svc.ListWinners(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "HandleShowcase -> h.svc.ListWinners", err, "", nil)

		return
	}

	featured, err := h.svc.ListFeatured(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "HandleShowcase -> h.svc.ListFeatured", err, "", nil)

		return
	}

	ctx.HTML(http.StatusOK, "index.html", gin.H{
		"Winners":  winners,
		"Featured": featured,
	})
}
