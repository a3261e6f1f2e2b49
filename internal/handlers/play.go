package handlers

import (
	"net/http"

	"github.com/vancomm/taskbingo-server/internal/config"
	"github.com/vancomm/taskbingo-server/internal/middleware"
	"github.com/vancomm/taskbingo-server/internal/session"
)

var decoder = newDecoder()

func (h BoardHandler) issue(w http.ResponseWriter, info session.Info) bool {
	claims := config.NewSessionClaims(
		info.ID, info.CardID, info.Actor.Team, string(info.Actor.Role),
	)
	if err := h.cookies.Issue(w, claims); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to issue session cookies", "error", err)
		return false
	}
	return true
}

// fail clears the cookies of sessions that are gone before writing the
// error.
func (h BoardHandler) fail(w http.ResponseWriter, err error) {
	if statusOf(err) == http.StatusUnauthorized {
		h.cookies.Clear(w)
	}
	sendError(w, h.logger, err)
}

// sessionID returns the id of the caller's session on the board in the
// path.
func (h BoardHandler) sessionID(r *http.Request) (string, error) {
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok || claims.CardId != r.PathValue("id") {
		return "", session.ErrSessionNotFound
	}
	return claims.SessionId, nil
}

func (h BoardHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var dto LoginDTO
	if err := decoder.Decode(&dto, r.PostForm); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	info, err := h.controller.Login(r.Context(), r.PathValue("id"), dto.Team, dto.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !h.issue(w, info) {
		return
	}
	sendJSONOrLog(w, h.logger, NewSessionDTO(info))
}

func (h BoardHandler) Switch(w http.ResponseWriter, r *http.Request) {
	sid, err := h.sessionID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var dto LoginDTO
	if err := decoder.Decode(&dto, r.PostForm); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	info, err := h.controller.SwitchTeam(r.Context(), sid, dto.Team, dto.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !h.issue(w, info) {
		return
	}
	sendJSONOrLog(w, h.logger, NewSessionDTO(info))
}

func (h BoardHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid, err := h.sessionID(r); err == nil {
		h.controller.Logout(sid)
	}
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h BoardHandler) Session(w http.ResponseWriter, r *http.Request) {
	sid, err := h.sessionID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	info, err := h.controller.Session(sid)
	if err != nil {
		h.fail(w, err)
		return
	}
	sendJSONOrLog(w, h.logger, NewSessionDTO(info))
}

func (h BoardHandler) Claim(w http.ResponseWriter, r *http.Request) {
	sid, err := h.sessionID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var dto ClaimDTO
	if err := decoder.Decode(&dto, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	out, err := h.controller.Claim(r.Context(), sid, dto.Tile)
	if err != nil {
		h.fail(w, err)
		return
	}
	sendJSONOrLog(w, h.logger, NewOutcomeDTO(out))
}

func (h BoardHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	sid, err := h.sessionID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var dto UnlockDTO
	if err := decoder.Decode(&dto, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	out, err := h.controller.ConfirmUnlocks(r.Context(), sid, dto.Tiles)
	if err != nil {
		h.fail(w, err)
		return
	}
	sendJSONOrLog(w, h.logger, NewOutcomeDTO(out))
}
