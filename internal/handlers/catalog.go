package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vancomm/taskbingo-server/internal/bingo"
	"github.com/vancomm/taskbingo-server/internal/catalog"
)

var (
	ErrBadTaskBody = errors.New("request body must be a JSON task")
	ErrBadIndex    = errors.New("task index must be an int")
)

const maxImportSize = 1 << 20

type CatalogHandler struct {
	logger  *slog.Logger
	catalog *catalog.Catalog
}

func NewCatalogHandler(logger *slog.Logger, c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{logger: logger, catalog: c}
}

func (h CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, h.logger, h.catalog.List())
}

func (h CatalogHandler) decodeTask(w http.ResponseWriter, r *http.Request) (bingo.Task, bool) {
	var task bingo.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(ErrBadTaskBody))
		return task, false
	}
	return task, true
}

func (h CatalogHandler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(ErrBadIndex))
		return 0, false
	}
	return index, true
}

func (h CatalogHandler) Add(w http.ResponseWriter, r *http.Request) {
	task, ok := h.decodeTask(w, r)
	if !ok {
		return
	}
	index, err := h.catalog.Add(task)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	sendJSONOrLog(w, h.logger, map[string]int{"index": index})
}

func (h CatalogHandler) Edit(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	task, ok := h.decodeTask(w, r)
	if !ok {
		return
	}
	if err := h.catalog.Edit(index, task); err != nil {
		sendError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	task, err := h.catalog.Delete(index)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	sendJSONOrLog(w, h.logger, task)
}

func (h CatalogHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	n, err := h.catalog.Import(data)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	h.logger.Info("tasks imported", slog.Int("count", n))
	sendJSONOrLog(w, h.logger, map[string]int{"imported": n, "total": h.catalog.Len()})
}

func (h CatalogHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.catalog.Export()
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.json"`)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("unable to send export", slog.Any("error", err))
	}
}
