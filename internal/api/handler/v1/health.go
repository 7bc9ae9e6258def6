package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baylot/raffle-api/internal/api/handler/v1/response"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{
		db: db,
	}
}

// HandleHealthcheck godoc
// @Summary      Liveness and database reachability
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Health
// @Failure      503  {object}  response.Err
// @Router       /healthz [get]
func (h *HealthHandler) HandleHealthcheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(pingCtx); err != nil {
		response.RenderErr(ctx, response.ErrServiceUnavailable(errors.New("database unreachable")))

		return
	}

	ctx.JSON(http.StatusOK, response.Health{Status: "ok", Database: "up"})
}
