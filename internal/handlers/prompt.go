package handlers

import (
	"net/http"

	"go.uber.org/zap"

	appErrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/service/transcription"
	"github.com/Tzuyuchae/QuickThoughts/pkg/api"
)

// PromptHandler handles POST /api/gemini, a plain text prompt passthrough.
type PromptHandler struct {
	service *transcription.Service
	logger  *zap.Logger
}

// NewPromptHandler creates the handler.
func NewPromptHandler(service *transcription.Service, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{service: service, logger: logger}
}

// Prompt sends the prompt to the model and returns its answer.
func (h *PromptHandler) Prompt(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req api.PromptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	out, err := h.service.Complete(r.Context(), req.Prompt)
	if appErrors.IsValidation(err) {
		api.Error(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	if err != nil {
		h.logger.Error("prompt failed", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	api.Success(w, http.StatusOK, api.PromptResponse{Response: out})
}
