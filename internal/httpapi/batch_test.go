package httpapi

import (
	"net/http"
	"testing"
	"time"

	"inferd/internal/manager"
	"inferd/pkg/types"
)

func TestBatchSubmit(t *testing.T) {
	svc := &mockService{batchID: "batch_1755772800123456789_1"}
	r := NewMux(svc)
	w := postJSON(t, r, "/v1/batch", `{"model":"tiny","prompt":"summarize this","max_tokens":64}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decodeBody[types.BatchSubmitResponse](t, w)
	if body.RequestID != "batch_1755772800123456789_1" || body.Status != "queued" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if svc.gotModel != "tiny" || svc.gotPrompt != "summarize this" {
		t.Fatalf("request not forwarded: model=%q prompt=%q", svc.gotModel, svc.gotPrompt)
	}
}

func TestBatchSubmitRequiresModel(t *testing.T) {
	r := NewMux(&mockService{})
	w := postJSON(t, r, "/v1/batch", `{"prompt":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestBatchSubmitInvalidArgument(t *testing.T) {
	r := NewMux(&mockService{batchErr: manager.ErrInvalidArgument("prompt must not be empty")})
	w := postJSON(t, r, "/v1/batch", `{"model":"tiny","prompt":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestBatchList(t *testing.T) {
	done := time.Unix(1755772805, 0)
	svc := &mockService{batchAll: []manager.BatchResult{
		{RequestID: "batch_1_1", Success: true, Response: "ok", CompletedAt: done},
		{RequestID: "batch_1_2", Success: false, ErrorMessage: "model not found: ghost", CompletedAt: done},
	}}
	r := NewMux(svc)
	w := get(t, r, "/v1/batch")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := decodeBody[types.BatchListResponse](t, w)
	if body.Count != 2 || len(body.Results) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Results[0].CompletedAtUnix != done.Unix() {
		t.Fatalf("completed_at not mapped: %+v", body.Results[0])
	}
	if body.Results[1].Success || body.Results[1].ErrorMessage == "" {
		t.Fatalf("failure result not mapped: %+v", body.Results[1])
	}
}

func TestBatchResult(t *testing.T) {
	svc := &mockService{batchResult: manager.BatchResult{
		RequestID: "batch_1_1", Success: true, Response: "done", CompletedAt: time.Unix(1755772805, 0),
	}}
	r := NewMux(svc)
	w := get(t, r, "/v1/batch/batch_1_1")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := decodeBody[types.BatchResultResponse](t, w)
	if !body.Success || body.Response != "done" || body.CompletedAtUnix == 0 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if svc.gotBatchID != "batch_1_1" {
		t.Fatalf("request id not forwarded: %q", svc.gotBatchID)
	}
}

// Unknown batch ids come back as a failure payload with a 200, not a 404.
func TestBatchResultUnknownIDKeepsShape(t *testing.T) {
	svc := &mockService{batchResult: manager.BatchResult{
		RequestID: "batch_nope", Success: false, ErrorMessage: "Request not found",
	}}
	r := NewMux(svc)
	w := get(t, r, "/v1/batch/batch_nope")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := decodeBody[types.BatchResultResponse](t, w)
	if body.Success || body.ErrorMessage != "Request not found" || body.CompletedAtUnix != 0 {
		t.Fatalf("unexpected body: %+v", body)
	}
}
