package domain

import "time"

// MemoStatus is the UI-visible processing status of a memo.
type MemoStatus string

const (
	MemoStatusReady       MemoStatus = "ready"
	MemoStatusClassifying MemoStatus = "classifying"
	MemoStatusError       MemoStatus = "error"
)

// DefaultMemoTitle is shown for rows persisted without a title.
const DefaultMemoTitle = "Voice Memo"

// Memo is a note as held in the visible list.
type Memo struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Status        MemoStatus `json:"status"`
	Date          string     `json:"date"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	Folder        string     `json:"category,omitempty"`
	Transcription string     `json:"transcription,omitempty"`
	Duration      float64    `json:"duration,omitempty"`
}

// MemoRecord is a memo row as stored in the backend.
type MemoRecord struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id,omitempty"`
	Title         *string    `json:"title"`
	Transcription *string    `json:"transcription"`
	FolderID      *string    `json:"folder_id"`
	Status        string     `json:"status,omitempty"`
	CreatedAt     *time.Time `json:"created_at"`
}

// NewMemo is the payload for inserting a memo row.
type NewMemo struct {
	Title         string
	Transcription string
	FolderID      string
	Status        MemoStatus
}

// FormatDateLabel renders the short date shown next to a memo, e.g. "Oct 19".
// A nil time means now.
func FormatDateLabel(t *time.Time, now time.Time) string {
	if t == nil {
		return now.Format("Jan 2")
	}
	return t.Local().Format("Jan 2")
}

// MemoFromRecord maps a stored row to its visible form using the folder index.
func MemoFromRecord(r MemoRecord, idx *FolderIndex, now time.Time) Memo {
	title := DefaultMemoTitle
	if r.Title != nil {
		title = *r.Title
	}

	folder := idx.Fallback()
	if r.FolderID != nil {
		if name, ok := idx.NameOf(*r.FolderID); ok {
			folder = name
		}
	}

	m := Memo{
		ID:        r.ID,
		Title:     title,
		Status:    MemoStatusReady,
		Date:      FormatDateLabel(r.CreatedAt, now),
		CreatedAt: r.CreatedAt,
		Folder:    folder,
	}
	if r.Transcription != nil {
		m.Transcription = *r.Transcription
	}
	return m
}

// Profile records onboarding state for a user.
type Profile struct {
	ID                 string `json:"id"`
	OnboardingComplete bool   `json:"onboarding_complete"`
}
