package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorText      string `json:"error,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorText
}

// WantsHTML reports whether the client asked for a rendered page rather than JSON.
func WantsHTML(ctx *gin.Context) bool {
	return strings.Contains(ctx.GetHeader("Accept"), "text/html")
}

// RenderErr writes e as JSON, or as the error page for browsers, and aborts the chain.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", e.HTTPStatusCode),
			zap.Error(e.Err))
	}

	if WantsHTML(ctx) {
		ctx.HTML(e.HTTPStatusCode, "error.html", gin.H{
			"Status": e.HTTPStatusCode,
			"Title":  e.StatusText,
			"Detail": e.ErrorText,
		})
		ctx.Abort()

		return
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request.",
		ErrorText:      err.Error(),
	}
}

func ErrUnprocessable(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Unprocessable entity.",
		ErrorText:      err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized.",
		ErrorText:      err.Error(),
	}
}

func ErrNotFound(resource, key string, value interface{}) *Err {
	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found.",
		ErrorText:      fmt.Sprintf("%v with %v=%v not found", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		ErrorText:      err.Error(),
	}
}

func ErrTooManyRequests() *Err {
	return &Err{
		HTTPStatusCode: http.StatusTooManyRequests,
		StatusText:     "Too many requests.",
		ErrorText:      "rate limit exceeded, retry later",
	}
}

// ErrBadGateway echoes the upstream failure to the client.
func ErrBadGateway(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadGateway,
		StatusText:     "Upstream error.",
		ErrorText:      err.Error(),
	}
}

func ErrServiceUnavailable(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusServiceUnavailable,
		StatusText:     "Service unavailable.",
		ErrorText:      err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
		ErrorText:      "Something went wrong.",
	}
}

func ErrPaymentRequired(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusPaymentRequired,
		StatusText:     "Payment required.",
		ErrorText:      err.Error(),
	}
}

func ErrPayloadTooLarge(limit int64) *Err {
	return &Err{
		HTTPStatusCode: http.StatusRequestEntityTooLarge,
		StatusText:     "Payload too large.",
		ErrorText:      fmt.Sprintf("upload exceeds %d bytes", limit),
	}
}
