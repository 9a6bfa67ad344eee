// Package supabase implements the repository interfaces on Supabase PostgREST.
package supabase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	sharedContext "github.com/Tzuyuchae/QuickThoughts/internal/context"
	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	appErrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
	"github.com/Tzuyuchae/QuickThoughts/internal/repository"
)

const (
	tableFolders  = "folders"
	tableMemos    = "memos"
	tableProfiles = "profiles"

	folderColumns = "id,name,user_id"
	memoColumns   = "id,user_id,title,transcription,folder_id,status,created_at"
)

var _ repository.Repository = (*Repository)(nil)

// Config holds the project credentials.
type Config struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
}

// Repository stores folders, memos and profiles in Supabase. With a service role
// key every query is filtered by user_id; otherwise each call runs with the
// caller's access token so row-level security applies.
type Repository struct {
	cfg     Config
	service *supa.Client
	logger  *zap.Logger
	metrics *observability.Collector
}

// NewRepository creates a repository. metrics may be nil.
func NewRepository(cfg Config, logger *zap.Logger, metrics *observability.Collector) (*Repository, error) {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase url is required")
	}
	if cfg.AnonKey == "" && cfg.ServiceRoleKey == "" {
		return nil, fmt.Errorf("supabase key is required")
	}

	r := &Repository{cfg: cfg, logger: logger, metrics: metrics}
	if cfg.ServiceRoleKey != "" {
		client, err := supa.NewClient(cfg.URL, cfg.ServiceRoleKey, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create supabase client: %w", err)
		}
		r.service = client
	}
	return r, nil
}

// client returns the Supabase client for the call's identity.
func (r *Repository) client(ctx context.Context) (*supa.Client, error) {
	if r.service != nil {
		return r.service, nil
	}
	token, ok := sharedContext.GetAccessToken(ctx)
	if !ok {
		return nil, appErrors.NewUnauthorized("no access token for store call")
	}
	client, err := supa.NewClient(r.cfg.URL, r.cfg.AnonKey, &supa.ClientOptions{
		Headers: map[string]string{"Authorization": "Bearer " + token},
		Schema:  "public",
	})
	if err != nil {
		return nil, appErrors.NewInternal("failed to create supabase client", err)
	}
	return client, nil
}

// observe wraps one store call with a span, a metric and error mapping.
func (r *Repository) observe(ctx context.Context, op string, fn func(*supa.Client) error) error {
	ctx, span := observability.StartSpan(ctx, "supabase."+op, attribute.String("db.operation", op))
	client, err := r.client(ctx)
	if err == nil {
		err = fn(client)
		if err != nil {
			if appErrors.TypeOf(err) == appErrors.ErrorTypeInternal {
				err = appErrors.NewRequestFailed(op+" failed", err)
			}
			observability.LoggerFromContext(ctx, r.logger).Error("store call failed",
				zap.String("operation", op), zap.Error(err))
		}
	}
	r.metrics.ObserveStore(op, err)
	observability.EndSpan(span, err)
	return err
}

// ListFolders returns the user's folders.
func (r *Repository) ListFolders(ctx context.Context, userID string) ([]domain.Folder, error) {
	var folders []domain.Folder
	err := r.observe(ctx, "list_folders", func(c *supa.Client) error {
		_, err := c.From(tableFolders).
			Select(folderColumns, "", false).
			Eq("user_id", userID).
			ExecuteTo(&folders)
		return err
	})
	if err != nil {
		return nil, err
	}
	return folders, nil
}

type folderRow struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// CreateFolders upserts on (user_id, name) so existing folders are left alone.
func (r *Repository) CreateFolders(ctx context.Context, userID string, names []string) error {
	rows := make([]folderRow, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		rows = append(rows, folderRow{UserID: userID, Name: name})
	}
	if len(rows) == 0 {
		return nil
	}

	return r.observe(ctx, "create_folders", func(c *supa.Client) error {
		_, _, err := c.From(tableFolders).
			Insert(rows, true, "user_id,name", "minimal", "").
			Execute()
		return err
	})
}

// ListMemos returns the user's memos newest first.
func (r *Repository) ListMemos(ctx context.Context, userID string) ([]domain.MemoRecord, error) {
	var memos []domain.MemoRecord
	err := r.observe(ctx, "list_memos", func(c *supa.Client) error {
		_, err := c.From(tableMemos).
			Select(memoColumns, "", false).
			Eq("user_id", userID).
			Order("created_at", &postgrest.OrderOpts{Ascending: false, NullsFirst: true}).
			ExecuteTo(&memos)
		return err
	})
	if err != nil {
		return nil, err
	}
	return memos, nil
}

type memoInsert struct {
	UserID        string  `json:"user_id"`
	Title         string  `json:"title"`
	Transcription *string `json:"transcription"`
	FolderID      *string `json:"folder_id"`
	Status        string  `json:"status"`
}

// InsertMemo inserts one memo and returns the stored row.
func (r *Repository) InsertMemo(ctx context.Context, userID string, memo domain.NewMemo) (domain.MemoRecord, error) {
	status := memo.Status
	if status == "" {
		status = domain.MemoStatusReady
	}
	row := memoInsert{
		UserID: userID,
		Title:  memo.Title,
		Status: string(status),
	}
	if memo.Transcription != "" {
		row.Transcription = &memo.Transcription
	}
	if memo.FolderID != "" {
		row.FolderID = &memo.FolderID
	}

	var inserted []domain.MemoRecord
	err := r.observe(ctx, "insert_memo", func(c *supa.Client) error {
		_, err := c.From(tableMemos).
			Insert(row, false, "", "representation", "").
			ExecuteTo(&inserted)
		return err
	})
	if err != nil {
		return domain.MemoRecord{}, err
	}
	if len(inserted) == 0 {
		return domain.MemoRecord{}, appErrors.NewRequestFailed("insert_memo returned no row", nil)
	}

	rec := inserted[0]
	if rec.CreatedAt == nil {
		now := time.Now().UTC()
		rec.CreatedAt = &now
	}
	return rec, nil
}

// DeleteMemo deletes the memo owned by userID.
func (r *Repository) DeleteMemo(ctx context.Context, userID, memoID string) error {
	return r.observe(ctx, "delete_memo", func(c *supa.Client) error {
		_, _, err := c.From(tableMemos).
			Delete("minimal", "").
			Eq("id", memoID).
			Eq("user_id", userID).
			Execute()
		return err
	})
}

// GetProfile loads the user's profile row.
func (r *Repository) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var profiles []domain.Profile
	err := r.observe(ctx, "get_profile", func(c *supa.Client) error {
		_, err := c.From(tableProfiles).
			Select("id,onboarding_complete", "", false).
			Eq("id", userID).
			ExecuteTo(&profiles)
		return err
	})
	if err != nil {
		return domain.Profile{}, err
	}
	if len(profiles) == 0 {
		return domain.Profile{}, appErrors.NewNotFound("profile not found")
	}
	return profiles[0], nil
}

// UpsertProfile writes the profile keyed by id.
func (r *Repository) UpsertProfile(ctx context.Context, profile domain.Profile) error {
	return r.observe(ctx, "upsert_profile", func(c *supa.Client) error {
		_, _, err := c.From(tableProfiles).
			Upsert(profile, "id", "minimal", "").
			Execute()
		return err
	})
}
