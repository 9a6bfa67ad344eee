package api

import "time"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ThoughtPayload is one classified thought.
type ThoughtPayload struct {
	Text   string `json:"text"`
	Folder string `json:"folder"`
	Label  string `json:"label"`
}

// TranscribeResponse is returned by POST /api/transcribe. Label and Category
// mirror the first thought for clients that only read a single classification.
type TranscribeResponse struct {
	Transcription string           `json:"transcription"`
	Thoughts      []ThoughtPayload `json:"thoughts"`
	Label         string           `json:"label"`
	Category      string           `json:"category"`
}

// FolderPayload is one folder.
type FolderPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FoldersResponse is returned by GET /api/folders.
type FoldersResponse struct {
	Folders []FolderPayload `json:"folders"`
}

// MemoPayload is a persisted memo as returned to clients.
type MemoPayload struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Transcription string     `json:"transcription,omitempty"`
	FolderID      string     `json:"folder_id,omitempty"`
	Folder        string     `json:"category"`
	Status        string     `json:"status"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// MemosResponse is returned by GET /api/memos.
type MemosResponse struct {
	Memos []MemoPayload `json:"memos"`
}

// CreateMemoRequest is the body of POST /api/memos. FolderID wins when it names
// one of the caller's folders; otherwise Folder is resolved by name, falling back
// to the fallback folder.
type CreateMemoRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	Transcription string `json:"transcription" validate:"max=20000"`
	FolderID      string `json:"folder_id,omitempty" validate:"max=64"`
	Folder        string `json:"folder" validate:"max=100"`
	Status        string `json:"status" validate:"omitempty,oneof=ready classifying error"`
}

// OnboardingRequest is the body of POST /api/onboarding.
type OnboardingRequest struct {
	Folders []string `json:"folders" validate:"max=50,dive,required,max=100"`
}

// ProfileResponse is returned by GET /api/profile and POST /api/onboarding.
type ProfileResponse struct {
	ID                 string `json:"id"`
	OnboardingComplete bool   `json:"onboarding_complete"`
}

// PromptRequest is the body of POST /api/gemini.
type PromptRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// PromptResponse carries the model's free-text answer.
type PromptResponse struct {
	Response string `json:"response"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment,omitempty"`
	AI          string `json:"ai"`
}
