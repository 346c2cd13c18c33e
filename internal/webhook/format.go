package webhook

import (
	"encoding/json"

	"github.com/sydlexius/janitor/internal/event"
)

func formatPayload(e event.Event) []byte {
	payload := map[string]any{
		"event":     string(e.Type),
		"timestamp": e.Timestamp,
		"message":   describe(e),
	}
	if e.RunID != "" {
		payload["run_id"] = e.RunID
	}
	if e.Data != nil {
		payload["data"] = e.Data
	}
	body, _ := json.Marshal(payload)
	return body
}

func describe(e event.Event) string {
	if msg, ok := e.Data["message"].(string); ok && msg != "" {
		return msg
	}
	return string(e.Type)
}
