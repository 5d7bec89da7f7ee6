package game

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	directory *Directory
	defaults  Config
	log       *slog.Logger
}

func NewHandler(d *Directory, defaults Config, log *slog.Logger) *Handler {
	return &Handler{directory: d, defaults: defaults, log: log}
}

type createSessionRequest struct {
	TotalRounds  int `json:"totalRounds"`
	MaxPlayers   int `json:"maxPlayers"`
	RoundSeconds int `json:"roundSeconds"`
}

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// CreateSessionHandler opens a session with optional overrides on the
// defaults. Overrides are clamped, never rejected.
func (h *Handler) CreateSessionHandler(ctx *gin.Context) {
	if ctx.GetString("id") == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not-authenticated"})
		return
	}

	cfg := h.defaults
	var req createSessionRequest
	if err := ctx.ShouldBindJSON(&req); err == nil {
		if req.TotalRounds > 0 {
			cfg.TotalRounds = min(req.TotalRounds, 10)
		}
		if req.MaxPlayers > 1 {
			cfg.MaxPlayers = min(req.MaxPlayers, h.defaults.MaxPlayers)
		}
		if req.RoundSeconds >= 30 {
			cfg.RoundDuration = time.Duration(min(req.RoundSeconds, 300)) * time.Second
		}
	}

	s := h.directory.Create(cfg)
	ctx.JSON(http.StatusCreated, createSessionResponse{SessionID: s.ID})
}

type sessionSummary struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Players     int    `json:"players"`
	Round       int    `json:"round"`
	TotalRounds int    `json:"totalRounds"`
}

func (h *Handler) ListSessionsHandler(ctx *gin.Context) {
	snaps := h.directory.List()
	out := make([]sessionSummary, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, sessionSummary{
			ID:          snap.ID,
			Status:      snap.Status,
			Players:     len(snap.Players),
			Round:       snap.Round,
			TotalRounds: snap.TotalRounds,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"sessions": out})
}

// AttachSessionHandler upgrades to a websocket and seats the caller: a known
// player reconnects, anyone else joins. The first frame the client receives
// is its snapshot.
func (h *Handler) AttachSessionHandler(ctx *gin.Context) {
	playerID := ctx.GetString("id")
	username := ctx.GetString("username")
	if playerID == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not-authenticated"})
		return
	}

	s, err := h.directory.Get(ctx.Param("id"))
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session-not-found"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}
	socket := NewWebsocketConnection(conn)

	// Subscribe before seating so the targeted snapshot event isn't missed.
	events, cancel := h.directory.pubsub.Subscribe(s.ID, playerID)

	if _, err := s.MarkReconnected(playerID); err != nil {
		if !errors.Is(err, ErrNotInSession) {
			cancel()
			socket.Close(err.Error())
			return
		}
		if _, err := s.Join(playerID, username); err != nil {
			cancel()
			socket.Close(err.Error())
			return
		}
	}

	client := NewClient(playerID, s, socket, events, cancel, h.log)
	go client.WritePump()
	go client.ReadPump()
}
