package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sydlexius/janitor/internal/history"
)

const defaultRunLimit = 50

func (r *Router) handleListRuns(w http.ResponseWriter, req *http.Request) {
	limit := defaultRunLimit
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := r.history.List(req.Context(), limit)
	if err != nil {
		r.logger.Error("listing runs", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (r *Router) handleGetRun(w http.ResponseWriter, req *http.Request) {
	run, err := r.history.Get(req.Context(), req.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		r.logger.Error("getting run", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, run)
}
