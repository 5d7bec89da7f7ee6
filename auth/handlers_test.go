package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuneScotty/drawit-server/crypto"
	"github.com/TuneScotty/drawit-server/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(storage.NewMemoryRepo(), crypto.NewJWTManager("test-secret", time.Hour), time.Hour, logger)

	r := gin.New()
	r.POST("/auth/guest", h.GuestLoginHandler)

	protected := r.Group("/whoami")
	protected.Use(h.RequireAuthMiddleware())
	protected.GET("", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"id": ctx.GetString("id"), "username": ctx.GetString("username")})
	})
	return r
}

func guestLogin(t *testing.T, r *gin.Engine, username string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/guest", strings.NewReader(`{"username":"`+username+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuestLogin(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	w := guestLogin(t, r, "ana")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "token")

	var tokenCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	assert.NotEmpty(t, tokenCookie.Value)
}

func TestGuestLogin_UsernameTaken(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	require.Equal(t, http.StatusCreated, guestLogin(t, r, "ana").Code)

	w := guestLogin(t, r, "ana")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ErrUsernameAlreadyExistsStr, w.Body.String())
}

func TestGuestLogin_BadUsernames(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	for _, username := range []string{"x", "has spaces", "way_too_long_for_a_username_here", "emoji😀"} {
		w := guestLogin(t, r, username)
		assert.Equal(t, http.StatusBadRequest, w.Code, "username %q", username)
	}
}

func TestRequireAuthMiddleware(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	login := guestLogin(t, r, "ana")
	require.Equal(t, http.StatusCreated, login.Code)
	var token string
	for _, c := range login.Result().Cookies() {
		if c.Name == "token" {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)

	cases := []struct {
		desc     string
		decorate func(req *http.Request)
		wantCode int
	}{
		{
			desc:     "no token at all",
			decorate: func(req *http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			desc: "token cookie",
			decorate: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "token", Value: token})
			},
			wantCode: http.StatusOK,
		},
		{
			desc: "bearer header",
			decorate: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+token)
			},
			wantCode: http.StatusOK,
		},
		{
			desc: "query parameter for websocket clients",
			decorate: func(req *http.Request) {
				q := req.URL.Query()
				q.Set("token", token)
				req.URL.RawQuery = q.Encode()
			},
			wantCode: http.StatusOK,
		},
		{
			desc: "tampered token",
			decorate: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "token", Value: token + "x"})
			},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		tc.decorate(req)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.wantCode, w.Code, tc.desc)
		if tc.wantCode == http.StatusOK {
			assert.Contains(t, w.Body.String(), "ana", tc.desc)
		}
	}
}
