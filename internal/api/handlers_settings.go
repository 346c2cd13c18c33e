package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sydlexius/janitor/internal/settings"
)

func (r *Router) handleGetSettings(w http.ResponseWriter, req *http.Request) {
	st, err := r.settings.Load(req.Context())
	if err != nil {
		r.logger.Error("loading settings", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleUpdateSettings applies a partial update. The body is a JSON object
// of setting keys to string, boolean or number values; nothing is stored
// unless every value is valid.
func (r *Router) handleUpdateSettings(w http.ResponseWriter, req *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	values := make(map[string]string, len(body))
	for k, v := range body {
		s, err := jsonString(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", k, err))
			return
		}
		values[k] = s
	}

	if err := r.settings.SetMany(req.Context(), values); err != nil {
		if errors.Is(err, settings.ErrUnknownKey) || errors.Is(err, settings.ErrInvalidValue) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		r.logger.Error("updating settings", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	r.handleGetSettings(w, req)
}

func (r *Router) handleResetExclusions(w http.ResponseWriter, req *http.Request) {
	if err := r.settings.ResetExclusions(req.Context()); err != nil {
		r.logger.Error("resetting exclusions", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func jsonString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
