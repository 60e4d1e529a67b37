package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inferd/internal/manager"
	"inferd/pkg/types"
)

func batchResultResponse(res manager.BatchResult) types.BatchResultResponse {
	out := types.BatchResultResponse{
		RequestID:    res.RequestID,
		Success:      res.Success,
		Response:     res.Response,
		ErrorMessage: res.ErrorMessage,
	}
	if !res.CompletedAt.IsZero() {
		out.CompletedAtUnix = res.CompletedAt.Unix()
	}
	return out
}

// handleBatchSubmit enqueues a generation request for asynchronous processing.
//
// @Summary Submit a batch request
// @Tags batch
// @Accept json
// @Produce json
// @Param request body types.BatchSubmitRequest true "model, prompt and sampling options"
// @Success 200 {object} types.BatchSubmitResponse
// @Failure 400 {object} types.ErrorResponse
// @Router /v1/batch [post]
func handleBatchSubmit(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.BatchSubmitRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Model) == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		id, err := svc.SubmitBatch(req.Model, req.Prompt, generationParams(req.MaxTokens, req.Temperature, req.TopP, req.TopK))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.BatchSubmitResponse{RequestID: id, Status: "queued"})
	}
}

// handleBatchList returns every batch result currently retained.
//
// @Summary List batch results
// @Tags batch
// @Produce json
// @Success 200 {object} types.BatchListResponse
// @Router /v1/batch [get]
func handleBatchList(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := svc.GetAllBatchResults()
		out := make([]types.BatchResultResponse, 0, len(results))
		for _, res := range results {
			out = append(out, batchResultResponse(res))
		}
		writeJSON(w, http.StatusOK, types.BatchListResponse{Results: out, Count: len(out)})
	}
}

// handleBatchResult looks up one batch request's outcome. Unknown ids yield a
// failure result rather than a 404, so pollers can treat the payload shape as
// constant.
//
// @Summary Fetch a batch result
// @Tags batch
// @Produce json
// @Param id path string true "request id"
// @Success 200 {object} types.BatchResultResponse
// @Router /v1/batch/{id} [get]
func handleBatchResult(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		writeJSON(w, http.StatusOK, batchResultResponse(svc.GetBatchResult(id)))
	}
}
