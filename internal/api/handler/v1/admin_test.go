package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/baylot/raffle-api/internal/auth"
)

func newAdminRouter(h *AdminHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/token", h.HandleIssueToken)

	return r
}

func TestAdminHandler_HandleIssueToken(t *testing.T) {
	keys := &mockKeys{}
	keys.On("Authorize", mock.Anything, adminCreds).Return(nil)
	keys.On("Authorize", mock.Anything, auth.Credentials{AdminKey: "wrong"}).Return(auth.ErrUnauthorized)
	keys.On("Authorize", mock.Anything, auth.Credentials{}).Return(auth.ErrUnauthorized)

	expiresAt := time.Date(2024, 5, 1, 12, 15, 0, 0, time.UTC)
	r := newAdminRouter(NewAdminHandler(keys, stubIssuer{token: "signed.jwt.token", expiresAt: expiresAt}))

	req := httptest.NewRequest(http.MethodPost, "/admin/token", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	w := serve(r, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "signed.jwt.token", gjson.Get(w.Body.String(), "token").String())
	assert.Equal(t, "Bearer", gjson.Get(w.Body.String(), "token_type").String())
	assert.Equal(t, expiresAt.Format(time.RFC3339), gjson.Get(w.Body.String(), "expires_at").String())

	req = httptest.NewRequest(http.MethodPost, "/admin/token?admin_key=wrong", nil)
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A bearer token alone cannot mint a new token.
	req = httptest.NewRequest(http.MethodPost, "/admin/token", nil)
	req.Header.Set("Authorization", "Bearer signed.jwt.token")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandler_HandleIssueToken_Disabled(t *testing.T) {
	r := newAdminRouter(NewAdminHandler(&mockKeys{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/admin/token", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	w := serve(r, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/?admin_key=from-query", nil)
	ctx.Request.Header.Set("Authorization", "Bearer  abc ")
	assert.Equal(t, auth.Credentials{AdminKey: "from-query", BearerToken: "abc"}, credentials(ctx))

	ctx.Request.Header.Set("X-Admin-Key", "from-header")
	ctx.Request.Header.Set("Authorization", "Basic xyz")
	assert.Equal(t, auth.Credentials{AdminKey: "from-header"}, credentials(ctx))
}
