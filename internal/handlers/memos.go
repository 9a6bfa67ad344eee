package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	appErrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/repository"
	"github.com/Tzuyuchae/QuickThoughts/pkg/api"
)

// MemoHandler handles folder and memo requests.
type MemoHandler struct {
	repo     repository.Repository
	fallback string
	logger   *zap.Logger
	now      func() time.Time
}

// NewMemoHandler creates a new memo handler.
func NewMemoHandler(repo repository.Repository, fallback string, logger *zap.Logger) *MemoHandler {
	if fallback == "" {
		fallback = domain.DefaultFallbackFolder
	}
	return &MemoHandler{repo: repo, fallback: fallback, logger: logger, now: time.Now}
}

// ListFolders handles GET /api/folders
func (h *MemoHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	folders, err := h.repo.ListFolders(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	resp := api.FoldersResponse{Folders: make([]api.FolderPayload, 0, len(folders))}
	for _, f := range folders {
		resp.Folders = append(resp.Folders, api.FolderPayload{ID: f.ID, Name: f.Name})
	}
	api.Success(w, http.StatusOK, resp)
}

// ListMemos handles GET /api/memos
func (h *MemoHandler) ListMemos(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	folders, err := h.repo.ListFolders(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	records, err := h.repo.ListMemos(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	idx := domain.NewFolderIndex(folders, h.fallback)
	resp := api.MemosResponse{Memos: make([]api.MemoPayload, 0, len(records))}
	for _, rec := range records {
		resp.Memos = append(resp.Memos, toMemoPayload(rec, idx, h.now()))
	}
	api.Success(w, http.StatusOK, resp)
}

// CreateMemo handles POST /api/memos
func (h *MemoHandler) CreateMemo(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req api.CreateMemoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	folders, err := h.repo.ListFolders(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	idx := domain.NewFolderIndex(folders, h.fallback)
	folderID := req.FolderID
	if _, known := idx.NameOf(folderID); !known {
		folderID, _ = idx.Resolve(strings.TrimSpace(req.Folder))
	}

	status := domain.MemoStatus(req.Status)
	if status == "" {
		status = domain.MemoStatusReady
	}
	rec, err := h.repo.InsertMemo(r.Context(), userID, domain.NewMemo{
		Title:         strings.TrimSpace(req.Title),
		Transcription: req.Transcription,
		FolderID:      folderID,
		Status:        status,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	api.Success(w, http.StatusCreated, toMemoPayload(rec, idx, h.now()))
}

// DeleteMemo handles DELETE /api/memos/{memoId}
func (h *MemoHandler) DeleteMemo(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	memoID := chi.URLParam(r, "memoId")
	if memoID == "" {
		handleServiceError(w, r, h.logger, appErrors.NewValidation("memo id is required"))
		return
	}

	if err := h.repo.DeleteMemo(r.Context(), userID, memoID); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toMemoPayload(rec domain.MemoRecord, idx *domain.FolderIndex, now time.Time) api.MemoPayload {
	m := domain.MemoFromRecord(rec, idx, now)
	p := api.MemoPayload{
		ID:            m.ID,
		Title:         m.Title,
		Transcription: m.Transcription,
		Folder:        m.Folder,
		Status:        string(m.Status),
		CreatedAt:     m.CreatedAt,
	}
	if rec.FolderID != nil {
		p.FolderID = *rec.FolderID
	}
	if rec.Status != "" {
		p.Status = rec.Status
	}
	return p
}
