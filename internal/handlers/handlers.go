package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/vancomm/taskbingo-server/internal/bingo"
	"github.com/vancomm/taskbingo-server/internal/catalog"
	"github.com/vancomm/taskbingo-server/internal/session"
)

var ErrInternal = errors.New("internal server error")

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Add("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, v any) {
	_, err := SendJSON(w, v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

var statuses = []struct {
	status int
	errs   []error
}{
	{http.StatusBadRequest, []error{
		bingo.ErrEmptyCatalog, bingo.ErrInsufficientTasks, bingo.ErrInvalidMineCount,
		bingo.ErrInvalidGridSize, bingo.ErrInvalidTeams, bingo.ErrInvalidConfig,
		bingo.ErrTileOutOfRange, bingo.ErrNotEligible, bingo.ErrTooManySelections,
		bingo.ErrDuplicateSelection, session.ErrNotTeamBoard,
		catalog.ErrNotArray, catalog.ErrInvalidTask,
	}},
	{http.StatusUnauthorized, []error{
		session.ErrIncorrectPassword, session.ErrSessionNotFound, session.ErrSessionExpired,
	}},
	{http.StatusForbidden, []error{
		bingo.ErrTileNotVisible, bingo.ErrNotAuthorized,
	}},
	{http.StatusNotFound, []error{
		session.ErrBoardNotFound, session.ErrTeamNotFound, catalog.ErrIndexOutOfRange,
	}},
	{http.StatusConflict, []error{
		bingo.ErrAlreadyClaimed, session.ErrUnlockPending, session.ErrNoPendingUnlock,
		session.ErrConflict,
	}},
	{http.StatusServiceUnavailable, []error{
		session.ErrOffline, session.ErrUnavailable,
	}},
}

func statusOf(err error) int {
	for _, s := range statuses {
		for _, target := range s.errs {
			if errors.Is(err, target) {
				return s.status
			}
		}
	}
	return http.StatusInternalServerError
}

// sendError writes the status matching err. Unexpected errors are logged
// and not echoed to the client.
func sendError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status == http.StatusInternalServerError {
		logger.Error("unable to handle request", slog.Any("error", err))
		err = ErrInternal
	}
	sendJSONOrLog(w, logger, wrapError(err))
}
