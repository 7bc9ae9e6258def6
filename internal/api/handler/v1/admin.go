package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baylot/raffle-api/internal/api/handler/v1/response"
	"github.com/baylot/raffle-api/internal/auth"
)

var errTokensDisabled = errors.New("admin tokens are not enabled on this server")

type KeyChecker interface {
	Authorize(ctx context.Context, creds auth.Credentials) error
}

type TokenIssuer interface {
	Issue() (string, time.Time, error)
}

type AdminHandler struct {
	keys   KeyChecker
	tokens TokenIssuer
}

// NewAdminHandler builds the token endpoint. tokens may be nil when no signing key is configured.
func NewAdminHandler(keys KeyChecker, tokens TokenIssuer) *AdminHandler {
	return &AdminHandler{
		keys:   keys,
		tokens: tokens,
	}
}

// HandleIssueToken godoc
// @Summary      Exchange the admin key for a short-lived bearer token
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Key  header  string  false  "Admin key"
// @Success      201  {object}  response.AdminToken
// @Failure      401  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/token [post]
// @Security     AdminKeyHeader
func (h *AdminHandler) HandleIssueToken(ctx *gin.Context) {
	if h.tokens == nil {
		response.RenderErr(ctx, response.ErrServiceUnavailable(errTokensDisabled))

		return
	}

	// Only the key itself may mint tokens, a token cannot renew itself.
	creds := credentials(ctx)
	creds.BearerToken = ""
	if err := h.keys.Authorize(ctx.Request.Context(), creds); err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(auth.ErrUnauthorized))

		return
	}

	token, expiresAt, err := h.tokens.Issue()
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("HandleIssueToken -> h.tokens.Issue -> %w", err)))

		return
	}

	ctx.JSON(http.StatusCreated, response.AdminToken{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	})
}
