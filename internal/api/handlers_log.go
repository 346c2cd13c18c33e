package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

func (r *Router) handleGetLog(w http.ResponseWriter, _ *http.Request) {
	text, err := r.cleanLog.Get()
	if err != nil {
		r.logger.Error("reading cleaning log", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeText(w, text)
}

func (r *Router) handleClearLog(w http.ResponseWriter, _ *http.Request) {
	if err := r.cleanLog.Clear(); err != nil {
		r.logger.Error("clearing cleaning log", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTrimLog keeps the first ?lines=N lines (25 when absent) and
// returns what is left.
func (r *Router) handleTrimLog(w http.ResponseWriter, req *http.Request) {
	lines := 0
	if v := req.URL.Query().Get("lines"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "lines must be a positive integer")
			return
		}
		lines = n
	}
	text, err := r.cleanLog.Trim(lines)
	if err != nil {
		r.logger.Error("trimming cleaning log", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeText(w, text)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text) //nolint:errcheck
}
