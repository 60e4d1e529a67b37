package httpapi

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"inferd/internal/manager"
	"inferd/internal/registry"
	"inferd/pkg/types"
)

// handleModels lists the *.gguf files discovered in the models directory.
//
// @Summary List available model files
// @Tags models
// @Produce json
// @Success 200 {object} types.ModelsResponse
// @Router /v1/models [get]
func handleModels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if modelsDir == "" {
			writeJSON(w, http.StatusOK, types.ModelsResponse{Models: []types.Model{}})
			return
		}
		models, err := registry.LoadDir(modelsDir)
		if err != nil {
			writeError(w, err)
			return
		}
		if models == nil {
			models = []types.Model{}
		}
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
	}
}

// handleLoadedModels lists currently loaded model names.
//
// @Summary List loaded models
// @Tags models
// @Produce json
// @Success 200 {object} types.LoadedModelsResponse
// @Router /v1/models/loaded [get]
func handleLoadedModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := svc.LoadedModelNames()
		writeJSON(w, http.StatusOK, types.LoadedModelsResponse{Models: names, Count: len(names)})
	}
}

// modelNameFromPath derives a model name from a weights path: the file name
// without its extension.
func modelNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// handleLoadModel loads a model file, optionally with embedding output.
//
// @Summary Load a model
// @Tags models
// @Accept json
// @Produce json
// @Param request body types.LoadModelRequest true "model file and settings"
// @Success 200 {object} types.LoadModelResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 507 {object} types.ErrorResponse
// @Router /v1/models/load [post]
func handleLoadModel(svc Service, embeddings bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.LoadModelRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Path) == "" {
			writeJSONError(w, http.StatusBadRequest, "path is required")
			return
		}
		path, err := registry.Resolve(modelsDir, req.Path)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		name := strings.TrimSpace(req.Model)
		if name == "" {
			name = modelNameFromPath(path)
		}
		cfg := manager.ModelConfig{
			Path:      path,
			GPULayers: req.GPULayers,
			CtxSize:   req.CtxSize,
			BatchSize: req.BatchSize,
			Threads:   req.Threads,
			UseMmap:   req.UseMmap,
			UseMlock:  req.UseMlock,
		}
		if embeddings {
			err = svc.LoadModelForEmbeddings(name, cfg)
		} else {
			err = svc.LoadModel(name, cfg)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.LoadModelResponse{
			Status:            "success",
			ModelName:         name,
			Path:              path,
			EmbeddingsEnabled: embeddings,
		})
	}
}

// handleUnloadModel unloads a loaded model after draining its work.
//
// @Summary Unload a model
// @Tags models
// @Accept json
// @Produce json
// @Param request body types.UnloadModelRequest true "model to unload"
// @Success 200 {object} types.UnloadModelResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse
// @Router /v1/models/unload [post]
func handleUnloadModel(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.UnloadModelRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Model) == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		if err := svc.UnloadModel(req.Model); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.UnloadModelResponse{Status: "success", ModelName: req.Model})
	}
}

// handleModelInfo reports one loaded model's configuration and pool state.
//
// @Summary Inspect a loaded model
// @Tags models
// @Produce json
// @Param name path string true "model name"
// @Success 200 {object} types.ModelInfoResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /v1/models/{name} [get]
func handleModelInfo(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		info, err := svc.ModelInfo(name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}
