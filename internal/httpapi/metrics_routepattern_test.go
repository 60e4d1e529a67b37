package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inferd/internal/manager"
)

// TestMetricsMiddleware_UsesRoutePattern ensures requests through
// parameterized routes are labeled by the chi pattern, not the raw path, so
// session and request ids stay out of the label set.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := NewMux(&mockService{nextTok: manager.StreamToken{Text: "x", ID: 1}})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/stream/stream_pattern_probe", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if mrr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", mrr.Code)
	}
	body := mrr.Body.Bytes()
	if !bytes.Contains(body, []byte("/v1/stream/{id}")) {
		t.Fatalf("expected metrics labeled by route pattern /v1/stream/{id}")
	}
	if bytes.Contains(body, []byte("stream_pattern_probe")) {
		t.Fatalf("raw session id leaked into metric labels")
	}
}
