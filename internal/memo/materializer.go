// Package memo turns classified thoughts into notes and keeps the visible note
// list in step with the backend.
package memo

import (
	"fmt"
	"sync"
	"time"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
)

// TempIDPrefix marks ids assigned before the backend confirmed a note.
const TempIDPrefix = "tmp-"

// Materializer creates note drafts with process-unique temporary ids.
type Materializer struct {
	mu    sync.Mutex
	batch uint64
	now   func() time.Time
}

// NewMaterializer creates a materializer. A nil clock means time.Now.
func NewMaterializer(now func() time.Time) *Materializer {
	if now == nil {
		now = time.Now
	}
	return &Materializer{now: now}
}

// Materialize returns one ready draft per thought, in thought order.
func (m *Materializer) Materialize(thoughts []domain.Thought) []domain.Memo {
	if len(thoughts) == 0 {
		return nil
	}

	m.mu.Lock()
	m.batch++
	batch := m.batch
	m.mu.Unlock()

	now := m.now()
	drafts := make([]domain.Memo, 0, len(thoughts))
	for i, t := range thoughts {
		title := t.Label
		if title == "" {
			title = fmt.Sprintf("Memo %d", i+1)
		}
		drafts = append(drafts, domain.Memo{
			ID:            fmt.Sprintf("%s%d-%d-%d", TempIDPrefix, now.UnixMilli(), batch, i),
			Title:         title,
			Status:        domain.MemoStatusReady,
			Date:          domain.FormatDateLabel(nil, now),
			Folder:        t.Folder,
			Transcription: t.Text,
		})
	}
	return drafts
}

// IsTempID reports whether id was assigned by a Materializer.
func IsTempID(id string) bool {
	return len(id) > len(TempIDPrefix) && id[:len(TempIDPrefix)] == TempIDPrefix
}
