package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/taskbingo-server/internal/bingo"
	"github.com/vancomm/taskbingo-server/internal/session"
)

type wsMessage struct {
	Type    string      `json:"type"`
	Board   *BoardView  `json:"board,omitempty"`
	Outcome *OutcomeDTO `json:"outcome,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type wsConn struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
}

func (c *wsConn) send(m wsMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	return c.conn.WriteJSON(m)
}

// Connect streams the board to the client on every stored change and runs
// the text commands it sends: "g" for the current board, "c <tile>" to
// claim and "u <tile>..." to confirm a pending unlock. Playing commands
// need a session on the board.
func (h BoardHandler) Connect(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("id")
	if _, _, err := h.controller.Board(r.Context(), cardID); err != nil {
		sendError(w, h.logger, err)
		return
	}
	sid, _ := h.sessionID(r)

	conn, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("unable to upgrade connection", slog.Any("error", err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.ws.ReadLimit)
	c := &wsConn{conn: conn, timeout: h.ws.WriteTimeout}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boards, err := h.controller.Subscribe(ctx, cardID)
	if err != nil {
		c.send(wsMessage{Type: "error", Error: err.Error()})
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer conn.Close()
		defer cancel()
		for u := range boards {
			view := h.view(u.Board, sid)
			view.Version = u.Version
			if err := c.send(wsMessage{Type: "board", Board: view}); err != nil {
				h.logger.Debug("unable to push board", slog.Any("error", err))
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("unable to read message", slog.Any("error", err))
			}
			break
		}
		if mt != websocket.TextMessage {
			break
		}
		text := strings.TrimSpace(string(message))
		h.logger.Debug("ws command", slog.String("card_id", cardID), slog.String("text", text))
		for _, line := range byPiece(text, "\n") {
			if err := c.send(h.execute(ctx, cardID, sid, line)); err != nil {
				h.logger.Debug("unable to write reply", slog.Any("error", err))
				cancel()
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	cancel()
	wg.Wait()
}

func (h BoardHandler) execute(ctx context.Context, cardID, sid, line string) wsMessage {
	cmd, err := parseCommand(line)
	if err != nil {
		return wsMessage{Type: "error", Error: err.Error()}
	}

	var out *session.Outcome
	switch cmd.name {
	case "g":
		board, version, err := h.controller.Board(ctx, cardID)
		if err != nil {
			return wsMessage{Type: "error", Error: err.Error()}
		}
		view := h.view(board, sid)
		view.Version = version
		return wsMessage{Type: "board", Board: view}
	case "c":
		if sid == "" {
			return wsMessage{Type: "error", Error: session.ErrSessionNotFound.Error()}
		}
		out, err = h.controller.Claim(ctx, sid, cmd.tiles[0])
	case "u":
		if sid == "" {
			return wsMessage{Type: "error", Error: session.ErrSessionNotFound.Error()}
		}
		out, err = h.controller.ConfirmUnlocks(ctx, sid, cmd.tiles)
	}
	if err != nil {
		return wsMessage{Type: "error", Error: err.Error()}
	}
	return wsMessage{Type: "outcome", Outcome: NewOutcomeDTO(out)}
}

// view projects a board for the session's current actor, or anonymously.
func (h BoardHandler) view(board *bingo.Board, sid string) *BoardView {
	var actor *bingo.Actor
	if sid != "" {
		if info, err := h.controller.Session(sid); err == nil {
			actor = &info.Actor
		}
	}
	return NewBoardView(board, 0, actor)
}
