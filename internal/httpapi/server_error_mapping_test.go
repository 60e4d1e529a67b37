package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"inferd/internal/manager"
)

type teapotError struct{}

func (teapotError) Error() string   { return "teapot" }
func (teapotError) StatusCode() int { return http.StatusTeapot }

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", manager.ErrInvalidArgument("prompt must not be empty"), http.StatusBadRequest},
		{"model not found", manager.ErrModelNotFound("ghost"), http.StatusNotFound},
		{"session not found", manager.ErrSessionNotFound("stream_x"), http.StatusNotFound},
		{"no capacity", manager.ErrNoCapacity("tiny"), http.StatusTooManyRequests},
		{"draining", manager.ErrModelDraining("tiny"), http.StatusConflict},
		{"drain timeout", manager.ErrDrainTimeout("tiny"), http.StatusConflict},
		{"dependency unavailable", manager.ErrDependencyUnavailable("backend not initialized"), http.StatusServiceUnavailable},
		{"memory limit", manager.ErrMemoryLimit("tiny"), http.StatusInsufficientStorage},
		{"http error passthrough", teapotError{}, http.StatusTeapot},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewMux(&mockService{generateErr: tc.err})
			w := postJSON(t, r, "/v1/generate", `{"model":"tiny","prompt":"hi"}`)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d (body %s)", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestErrorPayloadShape(t *testing.T) {
	r := NewMux(&mockService{generateErr: manager.ErrModelNotFound("ghost")})
	w := postJSON(t, r, "/v1/generate", `{"model":"ghost","prompt":"hi"}`)
	body := decodeBody[struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}](t, w)
	if body.Code != http.StatusNotFound || body.Error == "" {
		t.Fatalf("unexpected error payload: %+v", body)
	}
}

func TestNoCapacityIncrementsBackpressure(t *testing.T) {
	before := testutil.ToFloat64(backpressureTotal.WithLabelValues("no_idle_context"))
	r := NewMux(&mockService{generateErr: manager.ErrNoCapacity("tiny")})
	w := postJSON(t, r, "/v1/generate", `{"model":"tiny","prompt":"hi"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", w.Code)
	}
	after := testutil.ToFloat64(backpressureTotal.WithLabelValues("no_idle_context"))
	if after != before+1 {
		t.Fatalf("backpressure counter: before=%v after=%v", before, after)
	}
}
