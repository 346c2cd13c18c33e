package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sydlexius/janitor/internal/janitor"
)

// handleClean starts a run. By default the run continues in the background
// and 202 is returned; ?wait=true blocks and returns the result.
func (r *Router) handleClean(w http.ResponseWriter, req *http.Request) {
	if r.runner.Running() {
		writeError(w, http.StatusConflict, janitor.ErrRunInProgress.Error())
		return
	}

	if req.URL.Query().Get("wait") == "true" {
		res, err := r.runner.Run(req.Context(), janitor.Request{Trigger: janitor.TriggerAPI})
		switch {
		case errors.Is(err, janitor.ErrRunInProgress):
			writeError(w, http.StatusConflict, err.Error())
		case err != nil:
			r.logger.Error("cleaning run failed", slog.Any("error", err))
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeJSON(w, http.StatusOK, res)
		}
		return
	}

	go func() {
		if _, err := r.runner.Run(r.baseCtx, janitor.Request{Trigger: janitor.TriggerAPI}); err != nil {
			r.logger.Error("background cleaning run failed", slog.Any("error", err))
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}
