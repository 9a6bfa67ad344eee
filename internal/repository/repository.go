/**
 * =============================================================================
 * Repository Package - Data Access Contract for QuickThoughts
 * =============================================================================
 *
 * The server never talks to the backing store directly. Handlers and services
 * depend on these interfaces; the Supabase implementation lives in
 * repository/supabase and an in-memory one in repository/mocks.
 *
 * Every call is scoped to one user. Implementations must never return or
 * modify rows owned by another user, whether they enforce that with row-level
 * security or with explicit user_id filters.
 */
package repository

import (
	"context"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
)

// FolderRepository reads and creates a user's folders.
type FolderRepository interface {
	ListFolders(ctx context.Context, userID string) ([]domain.Folder, error)
	// CreateFolders inserts the named folders, ignoring names the user already has.
	CreateFolders(ctx context.Context, userID string, names []string) error
}

// MemoRepository persists memo rows.
type MemoRepository interface {
	// ListMemos returns the user's memos, newest first.
	ListMemos(ctx context.Context, userID string) ([]domain.MemoRecord, error)
	InsertMemo(ctx context.Context, userID string, memo domain.NewMemo) (domain.MemoRecord, error)
	// DeleteMemo removes the row. Deleting a missing row is not an error.
	DeleteMemo(ctx context.Context, userID, memoID string) error
}

// ProfileRepository stores onboarding state.
type ProfileRepository interface {
	// GetProfile returns a not-found error when the user has no profile row.
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	UpsertProfile(ctx context.Context, profile domain.Profile) error
}

// Repository combines all data access for the API.
type Repository interface {
	FolderRepository
	MemoRepository
	ProfileRepository
}
