package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vancomm/taskbingo-server/internal/bingo"
	"github.com/vancomm/taskbingo-server/internal/catalog"
	"github.com/vancomm/taskbingo-server/internal/config"
	"github.com/vancomm/taskbingo-server/internal/hashing"
	"github.com/vancomm/taskbingo-server/internal/middleware"
	"github.com/vancomm/taskbingo-server/internal/session"
)

var ErrBadBoardBody = errors.New("request body must be a JSON board configuration")

type BoardHandler struct {
	logger     *slog.Logger
	controller *session.Controller
	catalog    *catalog.Catalog
	cookies    *config.Cookies
	ws         *config.WebSocket
	scheme     hashing.Scheme
}

func NewBoardHandler(
	logger *slog.Logger,
	controller *session.Controller,
	catalog *catalog.Catalog,
	cookies *config.Cookies,
	ws *config.WebSocket,
	scheme hashing.Scheme,
) *BoardHandler {
	return &BoardHandler{
		logger:     logger,
		controller: controller,
		catalog:    catalog,
		cookies:    cookies,
		ws:         ws,
		scheme:     scheme,
	}
}

func (h BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateBoardDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(ErrBadBoardBody))
		return
	}

	cfg, err := dto.Config(h.scheme)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	tasks := dto.Tasks
	if len(tasks) == 0 {
		tasks = h.catalog.List()
	}

	board, err := h.controller.CreateBoard(r.Context(), tasks, cfg)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	sendJSONOrLog(w, h.logger, NewBoardView(board, 1, nil))
}

// viewer returns the live session of the request for the board, if any.
func (h BoardHandler) viewer(r *http.Request, cardID string) (session.Info, bool) {
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok || claims.CardId != cardID {
		return session.Info{}, false
	}
	info, err := h.controller.Session(claims.SessionId)
	if err != nil {
		return session.Info{}, false
	}
	return info, true
}

func (h BoardHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("id")
	board, version, err := h.controller.Board(r.Context(), cardID)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}

	var actor *bingo.Actor
	if info, ok := h.viewer(r, cardID); ok {
		actor = &info.Actor
	}
	sendJSONOrLog(w, h.logger, NewBoardView(board, version, actor))
}

func (h BoardHandler) Scores(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("id")
	board, _, err := h.controller.Board(r.Context(), cardID)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}

	scope := bingo.GlobalScope
	if info, ok := h.viewer(r, cardID); ok {
		scope = board.ScopeOf(info.Actor)
	}
	sendJSONOrLog(w, h.logger, ScoresDTO{
		Scores:    board.Scores(),
		MinesLeft: board.MinesLeft(scope),
	})
}
