package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inferd/pkg/types"
)

// handleStreamStart opens a token-streaming session.
//
// @Summary Start a streaming session
// @Tags streaming
// @Accept json
// @Produce json
// @Param request body types.StreamStartRequest true "model, prompt and sampling options"
// @Success 200 {object} types.StreamStartResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 429 {object} types.ErrorResponse
// @Router /v1/stream [post]
func handleStreamStart(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.StreamStartRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Model) == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		id, err := svc.StartStream(ctx, req.Model, req.Prompt, generationParams(req.MaxTokens, req.Temperature, req.TopP, req.TopK))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.StreamStartResponse{SessionID: id, Status: "started"})
	}
}

// handleStreamNext fetches the next token of a session, blocking until one is
// available or the request is canceled.
//
// @Summary Fetch the next stream token
// @Tags streaming
// @Produce json
// @Param id path string true "session id"
// @Success 200 {object} types.StreamTokenResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /v1/stream/{id} [get]
func handleStreamNext(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		tok, err := svc.NextStreamToken(ctx, id)
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.StreamTokenResponse{
			Token:       tok.Text,
			TokenID:     tok.ID,
			IsFinal:     tok.Final,
			Probability: tok.Probability,
			Error:       tok.Err,
		})
	}
}

// handleStreamStop stops a session and discards its pending tokens.
//
// @Summary Stop a streaming session
// @Tags streaming
// @Produce json
// @Param id path string true "session id"
// @Success 200 {object} types.StreamStopResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /v1/stream/{id} [delete]
func handleStreamStop(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := svc.StopStream(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.StreamStopResponse{Status: "stopped", SessionID: id})
	}
}
