// Package auth issues and checks player identity tokens. Players sign in as
// guests with just a username; the token then identifies them across HTTP
// and websocket requests.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TuneScotty/drawit-server/domain"
)

var (
	ErrMissingTokenStr          = "missing-token"
	ErrExpiredTokenStr          = "expired-token"
	ErrInvalidRequestFormatStr  = "bad-request-format"
	ErrUnknownStr               = "unknown-error"
	ErrUsernameAlreadyExistsStr = "username-already-exists"
	ErrInvalidUsernameFormatStr = "invalid-username-format"
	ErrServerTimeoutStr         = "server-timeout"
)

type UserRepo interface {
	CreateUser(ctx context.Context, username, passwordHash string) (string, error)
	GetUserById(ctx context.Context, id string) (domain.User, error)
}

type TokenManager interface {
	Generate(id, username string) (string, error)
	Verify(token string) (id, username string, err error)
}

type Handler struct {
	users        UserRepo
	tokens       TokenManager
	cookieMaxAge time.Duration
	log          *slog.Logger
}

func NewHandler(users UserRepo, tokens TokenManager, cookieMaxAge time.Duration, log *slog.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, cookieMaxAge: cookieMaxAge, log: log}
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// GuestLoginHandler registers a username and hands back a token. Usernames
// are first come first served.
func (h *Handler) GuestLoginHandler(ctx *gin.Context) {
	var body struct {
		Username string `json:"username"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		ctx.Abort()
		return
	}
	if !usernamePattern.MatchString(body.Username) {
		ctx.String(http.StatusBadRequest, ErrInvalidUsernameFormatStr)
		ctx.Abort()
		return
	}

	id, err := h.users.CreateUser(ctx.Request.Context(), body.Username, "")
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateUsername):
			ctx.String(http.StatusConflict, ErrUsernameAlreadyExistsStr)
		case errors.Is(err, context.DeadlineExceeded):
			ctx.String(http.StatusGatewayTimeout, ErrServerTimeoutStr)
		case errors.Is(err, context.Canceled):
			ctx.Status(499)
		default:
			h.log.Error("guest login: create user", "error", err, "username", body.Username, "ip", ctx.ClientIP())
			ctx.String(http.StatusInternalServerError, ErrUnknownStr)
		}
		ctx.Abort()
		return
	}

	token, err := h.tokens.Generate(id, body.Username)
	if err != nil {
		h.log.Error("guest login: token generation", "error", err, "user_id", id)
		ctx.String(http.StatusInternalServerError, ErrUnknownStr)
		ctx.Abort()
		return
	}

	ctx.SetCookie("token", token, int(h.cookieMaxAge.Seconds()), "/", "", true, true)
	ctx.SetSameSite(http.SameSiteNoneMode)
	ctx.JSON(http.StatusCreated, gin.H{"token": token, "id": id, "username": body.Username})
}

// RequireAuthMiddleware resolves the token from the cookie, the bearer
// header, or the token query parameter (websocket clients can't always set
// headers) and stores id and username on the request context.
func (h *Handler) RequireAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := tokenFrom(ctx)
		if token == "" {
			ctx.String(http.StatusUnauthorized, ErrMissingTokenStr)
			ctx.Abort()
			return
		}

		id, username, err := h.tokens.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrExpiredToken):
				ctx.String(http.StatusUnauthorized, ErrExpiredTokenStr)
			case errors.Is(err, domain.ErrInvalidSigningAlg),
				errors.Is(err, domain.ErrInvalidTokenSignature),
				errors.Is(err, domain.ErrCorruptedToken):
				h.log.Warn("suspicious token attempt",
					"ip", ctx.ClientIP(),
					"user_agent", ctx.Request.UserAgent(),
					"error", err.Error(),
				)
				ctx.Status(http.StatusUnauthorized)
			default:
				h.log.Error("token verification", "error", err.Error(), "ip", ctx.ClientIP())
				ctx.String(http.StatusUnauthorized, ErrUnknownStr)
			}
			ctx.Abort()
			return
		}

		ctx.Set("id", id)
		ctx.Set("username", username)
		ctx.Next()
	}
}

func tokenFrom(ctx *gin.Context) string {
	if token, err := ctx.Cookie("token"); err == nil && token != "" {
		return token
	}
	if header := ctx.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ctx.Query("token")
}

func (h *Handler) LogoutHandler(ctx *gin.Context) {
	ctx.SetCookie("token", "", -1, "/", "", true, true)
}
