// Package mocks provides mock implementations of repository interfaces for testing.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	appErrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/repository"
)

var _ repository.Repository = (*MockRepository)(nil)

// MockRepository provides an in-memory implementation of repository.Repository.
type MockRepository struct {
	mu sync.RWMutex

	folders  map[string][]domain.Folder     // userID -> folders
	memos    map[string][]domain.MemoRecord // userID -> memos
	profiles map[string]domain.Profile      // userID -> profile

	// For testing error scenarios
	shouldFailOn map[string]error

	now func() time.Time
}

// NewMockRepository creates a new mock repository instance.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		folders:      make(map[string][]domain.Folder),
		memos:        make(map[string][]domain.MemoRecord),
		profiles:     make(map[string]domain.Profile),
		shouldFailOn: make(map[string]error),
		now:          time.Now,
	}
}

// SetError configures the mock to return an error for a specific method.
func (m *MockRepository) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockRepository) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

func (m *MockRepository) checkError(method string) error {
	if err, ok := m.shouldFailOn[method]; ok {
		return err
	}
	return nil
}

// ListFolders returns the user's folders in creation order.
func (m *MockRepository) ListFolders(ctx context.Context, userID string) ([]domain.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkError("ListFolders"); err != nil {
		return nil, err
	}
	out := make([]domain.Folder, len(m.folders[userID]))
	copy(out, m.folders[userID])
	return out, nil
}

// CreateFolders adds the folders the user does not have yet.
func (m *MockRepository) CreateFolders(ctx context.Context, userID string, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("CreateFolders"); err != nil {
		return err
	}
	existing := make(map[string]bool, len(m.folders[userID]))
	for _, f := range m.folders[userID] {
		existing[f.Name] = true
	}
	for _, name := range names {
		if name == "" || existing[name] {
			continue
		}
		existing[name] = true
		m.folders[userID] = append(m.folders[userID], domain.Folder{ID: uuid.NewString(), Name: name, UserID: userID})
	}
	return nil
}

// ListMemos returns the user's memos newest first.
func (m *MockRepository) ListMemos(ctx context.Context, userID string) ([]domain.MemoRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkError("ListMemos"); err != nil {
		return nil, err
	}
	rows := m.memos[userID]
	out := make([]domain.MemoRecord, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, rows[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(*out[j].CreatedAt)
	})
	return out, nil
}

// InsertMemo stores a memo with a generated id and timestamp.
func (m *MockRepository) InsertMemo(ctx context.Context, userID string, memo domain.NewMemo) (domain.MemoRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("InsertMemo"); err != nil {
		return domain.MemoRecord{}, err
	}

	created := m.now()
	title, text, folderID := memo.Title, memo.Transcription, memo.FolderID
	rec := domain.MemoRecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         &title,
		Transcription: &text,
		Status:        string(memo.Status),
		CreatedAt:     &created,
	}
	if folderID != "" {
		rec.FolderID = &folderID
	}
	m.memos[userID] = append(m.memos[userID], rec)
	return rec, nil
}

// DeleteMemo removes the memo if present.
func (m *MockRepository) DeleteMemo(ctx context.Context, userID, memoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("DeleteMemo"); err != nil {
		return err
	}
	rows := m.memos[userID]
	for i, r := range rows {
		if r.ID == memoID {
			m.memos[userID] = append(rows[:i:i], rows[i+1:]...)
			break
		}
	}
	return nil
}

// GetProfile returns the stored profile.
func (m *MockRepository) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkError("GetProfile"); err != nil {
		return domain.Profile{}, err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return domain.Profile{}, appErrors.NewNotFound(fmt.Sprintf("profile %s not found", userID))
	}
	return p, nil
}

// UpsertProfile stores the profile.
func (m *MockRepository) UpsertProfile(ctx context.Context, profile domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("UpsertProfile"); err != nil {
		return err
	}
	m.profiles[profile.ID] = profile
	return nil
}

// MemoCount returns how many memos the user has.
func (m *MockRepository) MemoCount(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.memos[userID])
}
