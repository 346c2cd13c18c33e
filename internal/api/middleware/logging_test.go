package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLogging_RecordsStatusAndScrubsQuery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=5&api_key=hunter2", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, "status=404") {
		t.Errorf("log missing status: %s", out)
	}
	if strings.Contains(out, "hunter2") || !strings.Contains(out, "api_key=REDACTED") {
		t.Errorf("query not scrubbed: %s", out)
	}
	if !strings.Contains(out, "limit=5") {
		t.Errorf("harmless query dropped: %s", out)
	}
}

func TestScrubQuery(t *testing.T) {
	tests := map[string]string{
		"":                     "",
		"a=1":                  "a=1",
		"token=x&b=2":          "token=REDACTED&b=2",
		"Password=p&flag":      "Password=REDACTED&flag",
		"authorization=Bearer": "authorization=REDACTED",
	}
	for in, want := range tests {
		if got := scrubQuery(in); got != want {
			t.Errorf("scrubQuery(%q) = %q, want %q", in, got, want)
		}
	}
}
