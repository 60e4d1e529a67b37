package httpapi

import (
	"net/http"
	"strings"

	"inferd/internal/manager"
	"inferd/pkg/types"
)

// handleGenerate runs a blocking text completion.
//
// @Summary Generate a completion
// @Tags inference
// @Accept json
// @Produce json
// @Param request body types.GenerateRequest true "model, prompt and sampling options"
// @Success 200 {object} types.GenerateResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 429 {object} types.ErrorResponse
// @Router /v1/generate [post]
func handleGenerate(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GenerateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Model) == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		ctx, cancel := requestContext(r)
		defer cancel()
		text, err := svc.Generate(ctx, req.Model, req.Prompt, generationParams(req.MaxTokens, req.Temperature, req.TopP, req.TopK))
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.GenerateResponse{Model: req.Model, Response: text})
	}
}

// handleChat runs a blocking chat completion over a flattened transcript.
//
// @Summary Chat completion
// @Tags inference
// @Accept json
// @Produce json
// @Param request body types.ChatRequest true "conversation and sampling options"
// @Success 200 {object} types.ChatResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 429 {object} types.ErrorResponse
// @Router /v1/chat [post]
func handleChat(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Model) == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		msgs := make([]manager.ChatMessage, len(req.Messages))
		for i, m := range req.Messages {
			msgs[i] = manager.ChatMessage{Role: m.Role, Content: m.Content}
		}
		ctx, cancel := requestContext(r)
		defer cancel()
		text, err := svc.ChatCompletion(ctx, req.Model, msgs, generationParams(req.MaxTokens, req.Temperature, req.TopP, req.TopK))
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.ChatResponse{Content: text, Role: "assistant", Model: req.Model})
	}
}

// handleEmbeddings computes an embedding vector for a text.
//
// @Summary Embed a text
// @Tags inference
// @Accept json
// @Produce json
// @Param request body types.EmbedRequest true "model and text"
// @Success 200 {object} types.EmbedResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /v1/embeddings [post]
func handleEmbeddings(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.EmbedRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Model) == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		ctx, cancel := requestContext(r)
		defer cancel()
		vec, err := svc.Embeddings(ctx, req.Model, req.Text)
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.EmbedResponse{Model: req.Model, Embeddings: vec})
	}
}

func generationParams(maxTokens int, temp, topP float32, topK int) manager.GenerationParams {
	return manager.GenerationParams{
		MaxTokens:   maxTokens,
		Temperature: temp,
		TopP:        topP,
		TopK:        topK,
	}
}
