package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	appErrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/repository"
	"github.com/Tzuyuchae/QuickThoughts/pkg/api"
)

// OnboardingHandler handles first-run folder setup and the profile flag.
type OnboardingHandler struct {
	repo     repository.Repository
	fallback string
	logger   *zap.Logger
}

// NewOnboardingHandler creates the handler.
func NewOnboardingHandler(repo repository.Repository, fallback string, logger *zap.Logger) *OnboardingHandler {
	if fallback == "" {
		fallback = domain.DefaultFallbackFolder
	}
	return &OnboardingHandler{repo: repo, fallback: fallback, logger: logger}
}

// Complete handles POST /api/onboarding. It creates the selected folders plus the
// fallback folder, leaving existing ones untouched, then marks onboarding done.
func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req api.OnboardingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	names := domain.NewConstraint(req.Folders, h.fallback).Names()
	if err := h.repo.CreateFolders(r.Context(), userID, names); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	profile := domain.Profile{ID: userID, OnboardingComplete: true}
	if err := h.repo.UpsertProfile(r.Context(), profile); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	api.Success(w, http.StatusOK, api.ProfileResponse{ID: profile.ID, OnboardingComplete: true})
}

// Profile handles GET /api/profile. Users without a profile row have not onboarded.
func (h *OnboardingHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.repo.GetProfile(r.Context(), userID)
	if err != nil {
		if !appErrors.IsNotFound(err) {
			handleServiceError(w, r, h.logger, err)
			return
		}
		profile = domain.Profile{ID: userID}
	}

	api.Success(w, http.StatusOK, api.ProfileResponse{ID: profile.ID, OnboardingComplete: profile.OnboardingComplete})
}
