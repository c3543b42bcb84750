package trace

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealbook/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if !strings.HasPrefix(a, "req_") || len(a) != len("req_")+16 {
		t.Fatalf("unexpected request id %q", a)
	}
	if a == b {
		t.Fatal("request ids should be unique")
	}
	if GetRequestID(context.Background()) != "" {
		t.Fatal("empty context has no request id")
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Format: log.FormatJSON, Output: &buf, Component: log.ComponentHTTP})
	m := NewMiddleware(logger, func(*http.Request) string { return "198.51.100.1" })

	var seenID string
	var scoped *log.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		scoped = log.FromContext(r.Context())
		w.WriteHeader(http.StatusConflict)
		w.WriteHeader(http.StatusOK) // ignored, first status wins
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/months/2025-03/settle", nil))

	if seenID == "" || rr.Header().Get(RequestIDHeader) != seenID {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seenID, rr.Header().Get(RequestIDHeader))
	}
	if scoped == nil || scoped.Component() != log.ComponentHTTP {
		t.Fatal("handler should see the request-scoped logger")
	}

	out := buf.String()
	if !strings.Contains(out, `"request_id":"`+seenID+`"`) {
		t.Errorf("completion log missing request id: %s", out)
	}
	if !strings.Contains(out, `"status_code":409`) || !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("4xx responses should be logged at warn with their status: %s", out)
	}
}
