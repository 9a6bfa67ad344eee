package handlers

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/capture"
	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	appErrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
	"github.com/Tzuyuchae/QuickThoughts/internal/repository"
	"github.com/Tzuyuchae/QuickThoughts/internal/service/transcription"
	"github.com/Tzuyuchae/QuickThoughts/pkg/api"
)

// AudioFormField is the multipart field carrying the clip.
const AudioFormField = "audio"

// TranscribeHandler handles POST /api/transcribe.
type TranscribeHandler struct {
	service        *transcription.Service
	folders        repository.FolderRepository
	fallback       string
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewTranscribeHandler creates the handler.
func NewTranscribeHandler(service *transcription.Service, folders repository.FolderRepository, fallback string, maxUploadBytes int64, logger *zap.Logger) *TranscribeHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = capture.MaxFileBytes
	}
	return &TranscribeHandler{
		service:        service,
		folders:        folders,
		fallback:       fallback,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Transcribe classifies one uploaded clip against the caller's folders. Missing
// audio and a missing session are both client errors.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	log := observability.LoggerFromContext(r.Context(), h.logger)

	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, "Unauthorized")
		return
	}

	clip, err := h.readClip(w, r)
	if err != nil {
		log.Info("rejected upload", zap.Error(err))
		api.Error(w, http.StatusBadRequest, "No audio file provided")
		return
	}

	folders, err := h.folders.ListFolders(r.Context(), userID)
	if err != nil {
		log.Warn("failed to load folders, classifying into fallback only", zap.Error(err))
		folders = nil
	}
	constraint := domain.ConstraintFromFolders(folders, h.fallback)

	transcript, err := h.service.Transcribe(r.Context(), clip, constraint)
	if err != nil {
		if appErrors.IsValidation(err) {
			api.Error(w, http.StatusBadRequest, appErrors.PublicMessage(err))
			return
		}
		log.Error("transcription failed", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "Failed to process audio")
		return
	}

	api.Success(w, http.StatusOK, toTranscribeResponse(transcript))
}

func (h *TranscribeHandler) readClip(w http.ResponseWriter, r *http.Request) (domain.AudioClip, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return domain.AudioClip{}, err
	}
	file, header, err := r.FormFile(AudioFormField)
	if err != nil {
		return domain.AudioClip{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.AudioClip{}, err
	}
	if len(data) == 0 {
		return domain.AudioClip{}, appErrors.NewValidation("audio file is empty")
	}

	return domain.AudioClip{
		Name:     header.Filename,
		MimeType: partMimeType(header.Header.Get("Content-Type"), header.Filename),
		Data:     data,
	}, nil
}

// partMimeType prefers the part's declared audio type and falls back to the
// file extension.
func partMimeType(declared, filename string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mt, "audio/") {
		return mt
	}
	if mt, ok := capture.MimeTypeFor(filename); ok {
		return mt
	}
	return "audio/webm"
}

func toTranscribeResponse(t domain.Transcript) api.TranscribeResponse {
	resp := api.TranscribeResponse{
		Transcription: t.Transcription,
		Thoughts:      make([]api.ThoughtPayload, 0, len(t.Thoughts)),
	}
	for _, th := range t.Thoughts {
		resp.Thoughts = append(resp.Thoughts, api.ThoughtPayload{Text: th.Text, Folder: th.Folder, Label: th.Label})
	}
	if len(t.Thoughts) > 0 {
		resp.Label = t.Thoughts[0].Label
		resp.Category = t.Thoughts[0].Folder
	}
	return resp
}
