package memo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
)

// SyncState tracks a visible note's persistence.
type SyncState string

const (
	SyncOptimistic SyncState = "optimistic"
	SyncConfirmed  SyncState = "confirmed"
	SyncFailed     SyncState = "failed"
)

// Backend persists notes for one user.
type Backend interface {
	ListFolders(ctx context.Context, userID string) ([]domain.Folder, error)
	ListMemos(ctx context.Context, userID string) ([]domain.MemoRecord, error)
	InsertMemo(ctx context.Context, userID string, memo domain.NewMemo) (domain.MemoRecord, error)
	DeleteMemo(ctx context.Context, userID, memoID string) error
}

// Note is a visible memo with its sync state.
type Note struct {
	domain.Memo
	State SyncState `json:"state"`
}

// StoreOptions configures a Store.
type StoreOptions struct {
	Logger         *zap.Logger
	Metrics        *observability.Collector
	FallbackFolder string
	Now            func() time.Time
}

// Stats counts persistence failures since the store was created.
type Stats struct {
	InsertFailures int
	DeleteFailures int
}

// Store owns the visible note list and folder cache for the signed-in user.
// Mutations apply to the list immediately and are persisted in the background.
type Store struct {
	backend  Backend
	logger   *zap.Logger
	metrics  *observability.Collector
	fallback string
	now      func() time.Time

	mu         sync.Mutex
	generation uint64
	userID     string
	notes      []*Note
	folders    []domain.Folder
	index      *domain.FolderIndex
	// deleted holds temp ids removed before their insert confirmed.
	deleted map[string]bool
	stats   Stats

	wg sync.WaitGroup
}

// NewStore creates an empty, signed-out store.
func NewStore(backend Backend, opts StoreOptions) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FallbackFolder == "" {
		opts.FallbackFolder = domain.DefaultFallbackFolder
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		backend:  backend,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		fallback: opts.FallbackFolder,
		now:      opts.Now,
		index:    domain.NewFolderIndex(nil, opts.FallbackFolder),
		deleted:  make(map[string]bool),
	}
}

// SetSession switches the store to userID. On a change of identity all cached
// notes, folders and pending work are dropped before anything is loaded, and
// persistence results still in flight for the previous identity are ignored.
// An empty userID signs out.
func (s *Store) SetSession(ctx context.Context, userID string) error {
	s.mu.Lock()
	if userID != s.userID {
		s.generation++
		s.userID = userID
		s.notes = nil
		s.folders = nil
		s.index = domain.NewFolderIndex(nil, s.fallback)
		s.deleted = make(map[string]bool)
	}
	s.mu.Unlock()

	if userID == "" {
		return nil
	}
	return s.load(ctx)
}

// Refresh reloads folders and then memos for the current user. It first waits
// for in-flight persistence so that a note being inserted is not listed twice.
// Notes that have not been confirmed stay at the top of the list.
func (s *Store) Refresh(ctx context.Context) error {
	s.wg.Wait()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) error {
	s.mu.Lock()
	gen, userID := s.generation, s.userID
	s.mu.Unlock()
	if userID == "" {
		return nil
	}

	folders, err := s.backend.ListFolders(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load folders", zap.String("user_id", userID), zap.Error(err))
		folders = nil
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return nil
	}
	s.folders = folders
	s.index = domain.NewFolderIndex(folders, s.fallback)
	idx := s.index
	s.mu.Unlock()

	records, err := s.backend.ListMemos(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load memos", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("load memos: %w", err)
	}

	now := s.now()
	loaded := make([]*Note, 0, len(records))
	for _, r := range records {
		loaded = append(loaded, &Note{Memo: domain.MemoFromRecord(r, idx, now), State: SyncConfirmed})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return nil
	}
	notes := make([]*Note, 0, len(s.notes)+len(loaded))
	for _, n := range s.notes {
		if n.State != SyncConfirmed {
			notes = append(notes, n)
		}
	}
	s.notes = append(notes, loaded...)
	return nil
}

// Insert prepends the drafts in order and persists each one in the background.
func (s *Store) Insert(ctx context.Context, drafts ...domain.Memo) {
	if len(drafts) == 0 {
		return
	}

	s.mu.Lock()
	gen, userID, idx := s.generation, s.userID, s.index
	batch := make([]*Note, 0, len(drafts))
	for _, d := range drafts {
		if d.Folder == "" {
			d.Folder = s.fallback
		}
		if d.Status == "" {
			d.Status = domain.MemoStatusReady
		}
		batch = append(batch, &Note{Memo: d, State: SyncOptimistic})
	}
	s.notes = append(batch, s.notes...)
	if userID == "" {
		for _, n := range batch {
			n.State = SyncFailed
		}
	}
	s.mu.Unlock()

	if userID == "" {
		s.logger.Warn("no session, notes kept locally", zap.Int("count", len(batch)))
		return
	}

	ctx = context.WithoutCancel(ctx)
	for _, n := range batch {
		s.wg.Add(1)
		go s.persist(ctx, gen, userID, idx, n.Memo)
	}
}

func (s *Store) persist(ctx context.Context, gen uint64, userID string, idx *domain.FolderIndex, draft domain.Memo) {
	defer s.wg.Done()

	folderID, _ := idx.Resolve(draft.Folder)
	rec, err := s.backend.InsertMemo(ctx, userID, domain.NewMemo{
		Title:         draft.Title,
		Transcription: draft.Transcription,
		FolderID:      folderID,
		Status:        draft.Status,
	})
	s.metrics.ObserveStore("insert_memo", err)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding insert result from previous session", zap.String("temp_id", draft.ID))
		return
	}

	if err != nil {
		s.stats.InsertFailures++
		if s.deleted[draft.ID] {
			delete(s.deleted, draft.ID)
		} else if n := s.find(draft.ID); n != nil {
			n.State = SyncFailed
		}
		s.mu.Unlock()
		s.logger.Error("failed to insert memo", zap.String("temp_id", draft.ID), zap.Error(err))
		return
	}

	if s.deleted[draft.ID] {
		delete(s.deleted, draft.ID)
		s.mu.Unlock()
		s.deleteRemote(ctx, userID, rec.ID)
		return
	}

	if s.find(rec.ID) != nil {
		// A reload already listed the stored row.
		s.remove(draft.ID)
	} else if n := s.find(draft.ID); n != nil {
		n.ID = rec.ID
		if rec.CreatedAt != nil {
			n.CreatedAt = rec.CreatedAt
		}
		n.Date = domain.FormatDateLabel(n.CreatedAt, s.now())
		n.State = SyncConfirmed
	}
	s.mu.Unlock()
}

// Delete removes the note from the visible list immediately. Confirmed notes are
// deleted in the backend in the background and are not restored if that fails.
// Deleting an unknown id does nothing.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	pos := -1
	for i, n := range s.notes {
		if n.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		s.mu.Unlock()
		return
	}
	n := s.notes[pos]
	s.notes = append(s.notes[:pos:pos], s.notes[pos+1:]...)
	userID := s.userID

	switch n.State {
	case SyncOptimistic:
		s.deleted[id] = true
		s.mu.Unlock()
	case SyncConfirmed:
		s.mu.Unlock()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.deleteRemote(context.WithoutCancel(ctx), userID, id)
		}()
	default:
		s.mu.Unlock()
	}
}

func (s *Store) deleteRemote(ctx context.Context, userID, id string) {
	err := s.backend.DeleteMemo(ctx, userID, id)
	s.metrics.ObserveStore("delete_memo", err)
	if err != nil {
		s.mu.Lock()
		s.stats.DeleteFailures++
		s.mu.Unlock()
		s.logger.Error("failed to delete memo", zap.String("memo_id", id), zap.Error(err))
	}
}

// Restore adds previously unsynced notes as failed, skipping ids already visible.
func (s *Store) Restore(memos []domain.Memo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	restored := make([]*Note, 0, len(memos))
	for _, m := range memos {
		if s.find(m.ID) != nil {
			continue
		}
		restored = append(restored, &Note{Memo: m, State: SyncFailed})
	}
	s.notes = append(restored, s.notes...)
}

// RetryFailed persists every failed note again and returns how many were retried.
func (s *Store) RetryFailed(ctx context.Context) int {
	s.mu.Lock()
	gen, userID, idx := s.generation, s.userID, s.index
	if userID == "" {
		s.mu.Unlock()
		return 0
	}
	var retry []domain.Memo
	for _, n := range s.notes {
		if n.State == SyncFailed {
			n.State = SyncOptimistic
			retry = append(retry, n.Memo)
		}
	}
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	for _, m := range retry {
		s.wg.Add(1)
		go s.persist(ctx, gen, userID, idx, m)
	}
	return len(retry)
}

// Wait blocks until all background persistence has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

func (s *Store) remove(id string) {
	for i, n := range s.notes {
		if n.ID == id {
			s.notes = append(s.notes[:i:i], s.notes[i+1:]...)
			return
		}
	}
}

func (s *Store) find(id string) *Note {
	for _, n := range s.notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Notes returns a copy of the visible list, newest first.
func (s *Store) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = *n
	}
	return out
}

// Unsynced returns the notes the backend has not confirmed.
func (s *Store) Unsynced() []domain.Memo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Memo
	for _, n := range s.notes {
		if n.State != SyncConfirmed {
			out = append(out, n.Memo)
		}
	}
	return out
}

// Folders returns the cached folders.
func (s *Store) Folders() []domain.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Folder, len(s.folders))
	copy(out, s.folders)
	return out
}

// Constraint returns the folder names the current user can file into.
func (s *Store) Constraint() domain.Constraint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ConstraintFromFolders(s.folders, s.fallback)
}

// UserID returns the current identity, empty when signed out.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Stats returns the failure counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
