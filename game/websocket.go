package game

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

type WebsocketConnection struct {
	socket *websocket.Conn
}

func (wc *WebsocketConnection) Write(data []byte) error {
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *WebsocketConnection) Ping() error {
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *WebsocketConnection) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *WebsocketConnection) Close(reason string) {
	wc.socket.SetWriteDeadline(time.Now().Add(time.Second * 20))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	wc.socket.Close()
}

func NewWebsocketConnection(conn *websocket.Conn) WebsocketConnection {
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(time.Minute))
		return nil
	})
	return WebsocketConnection{conn}
}

// clientMessage is the inbound frame union; Type selects which fields matter.
type clientMessage struct {
	Type    string          `json:"type"`
	Word    string          `json:"word,omitempty"`
	Kind    string          `json:"kind,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Seq     int             `json:"seq,omitempty"`
	Text    string          `json:"text,omitempty"`
	OwnerID string          `json:"ownerId,omitempty"`
	Stars   int             `json:"stars,omitempty"`
}

// Client ties one websocket to one player's seat in a session. ReadPump is
// the only reader, WritePump the only writer; the session's event stream and
// locally generated error frames both drain through WritePump.
type Client struct {
	playerID string
	session  *Session
	socket   WebsocketConnection
	events   <-chan Event
	cancel   func()
	outbox   chan []byte
	limiter  *rate.Limiter
	log      *slog.Logger
}

func NewClient(playerID string, s *Session, socket WebsocketConnection, events <-chan Event, cancel func(), log *slog.Logger) *Client {
	return &Client{
		playerID: playerID,
		session:  s,
		socket:   socket,
		events:   events,
		cancel:   cancel,
		outbox:   make(chan []byte, 16),
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 3),
		log:      log.With("player", playerID, "session", s.ID),
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		if err := c.session.MarkDisconnected(c.playerID); err != nil && !errors.Is(err, ErrSessionClosed) && !errors.Is(err, ErrNotInSession) {
			c.log.Error("mark disconnected", "error", err)
		}
		c.socket.Close("")
	}()

	for {
		data, err := c.socket.Read()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg clientMessage) {
	var err error
	switch msg.Type {
	case "start_game":
		err = c.session.StartGame(c.playerID)
	case "select_word":
		err = c.session.SelectWord(c.playerID, msg.Word)
	case "drawing_action":
		err = c.session.SubmitDrawingAction(c.playerID, msg.Kind, msg.Payload, msg.Seq)
	case "guess":
		if !c.limiter.Allow() {
			err = ErrRateLimited
			break
		}
		err = c.session.SubmitGuess(c.playerID, msg.Text)
	case "chat":
		if !c.limiter.Allow() {
			err = ErrRateLimited
			break
		}
		err = c.session.SubmitChat(c.playerID, msg.Text)
	case "rate":
		err = c.session.SubmitRating(c.playerID, msg.OwnerID, msg.Stars)
	case "complete_rating":
		err = c.session.CompleteRating(c.playerID)
	case "snapshot":
		var snap SessionSnapshot
		snap, err = c.session.Snapshot(c.playerID)
		if err == nil {
			c.send(Event{Type: EventSnapshot, To: c.playerID, Snapshot: &snap})
			return
		}
	case "leave":
		err = c.session.Leave(c.playerID)
	default:
		return
	}
	if err != nil {
		c.sendError(msg.Type, err)
	}
}

// send queues a frame produced locally, outside the session's event stream.
func (c *Client) send(ev Event) {
	frame, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case c.outbox <- frame:
	default:
	}
}

func (c *Client) sendError(op string, err error) {
	frame, merr := json.Marshal(errorFrame{Type: "error", Op: op, Error: err.Error()})
	if merr != nil {
		return
	}
	select {
	case c.outbox <- frame:
	default:
		// a client this far behind won't miss one more error
	}
}

type errorFrame struct {
	Type  string `json:"type"`
	Op    string `json:"op"`
	Error string `json:"error"`
}

func (c *Client) WritePump() {
	ping := time.NewTicker(45 * time.Second)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				c.socket.Close("session closed")
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				c.log.Error("marshal event", "type", ev.Type, "error", err)
				continue
			}
			if err := c.socket.Write(data); err != nil {
				return
			}
		case data := <-c.outbox:
			if err := c.socket.Write(data); err != nil {
				return
			}
		case <-ping.C:
			if err := c.socket.Ping(); err != nil {
				return
			}
		}
	}
}
