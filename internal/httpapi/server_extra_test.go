package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"inferd/internal/manager"
)

// blockService hangs Generate until the request context is done; used to
// exercise the server-side timeout path.
type blockService struct{ mockService }

func (b *blockService) Generate(ctx context.Context, model, prompt string, p manager.GenerationParams) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerateLogsWithZerologInfo(t *testing.T) {
	SetLogger(zerolog.New(io.Discard))
	defer SetLogger(zerolog.Logger{})

	r := NewMux(&mockService{generateText: "hi there"})
	w := postJSON(t, r, "/v1/generate?log=info", `{"model":"tiny","prompt":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with info logging, got %d", w.Code)
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	r := NewMux(&mockService{loaded: []string{"tiny"}})
	req := httptest.NewRequest(http.MethodGet, "/v1/models/loaded", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected Access-Control-Allow-Origin to be set")
	}
}

func TestGenerateTimeoutReturns500(t *testing.T) {
	SetGenerateTimeoutSeconds(1)
	defer SetGenerateTimeoutSeconds(0)

	r := NewMux(&blockService{})
	w := postJSON(t, r, "/v1/generate", `{"model":"tiny","prompt":"x"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on timeout, got %d", w.Code)
	}
}

func TestClientDisconnectWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewMux(&blockService{})
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewBufferString(`{"model":"tiny","prompt":"x"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body after client disconnect, got %q", w.Body.String())
	}
}

func TestContentTypeCaseInsensitive(t *testing.T) {
	r := NewMux(&mockService{generateText: "ok"})
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewBufferString(`{"model":"tiny","prompt":"hi"}`))
	req.Header.Set("Content-Type", "Application/JSON; charset=utf-8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with mixed-case content-type, got %d", w.Code)
	}
}
