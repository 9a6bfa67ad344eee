package memo

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
)

var fixedNow = time.Date(2026, time.October, 19, 15, 4, 5, 0, time.Local)

func TestMaterialize(t *testing.T) {
	m := NewMaterializer(func() time.Time { return fixedNow })

	drafts := m.Materialize([]domain.Thought{
		{Text: "call the bank", Label: "Call Bank", Folder: "Work"},
		{Text: "an idea", Label: "", Folder: "Unsorted"},
	})
	require.Len(t, drafts, 2)

	assert.Equal(t, "Call Bank", drafts[0].Title)
	assert.Equal(t, "Memo 2", drafts[1].Title)
	assert.Equal(t, "call the bank", drafts[0].Transcription)
	assert.Equal(t, "Work", drafts[0].Folder)
	assert.Equal(t, domain.MemoStatusReady, drafts[0].Status)
	assert.Equal(t, "Oct 19", drafts[0].Date)
	assert.Nil(t, drafts[0].CreatedAt)
	assert.Equal(t, fmt.Sprintf("tmp-%d-1-0", fixedNow.UnixMilli()), drafts[0].ID)
	assert.True(t, IsTempID(drafts[1].ID))
}

func TestMaterialize_IDsUniqueAcrossBatches(t *testing.T) {
	m := NewMaterializer(func() time.Time { return fixedNow })
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		for _, d := range m.Materialize([]domain.Thought{{Text: "a"}, {Text: "b"}}) {
			assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
			seen[d.ID] = true
		}
	}
	assert.Len(t, seen, 100)
}

func TestMaterialize_Empty(t *testing.T) {
	assert.Nil(t, NewMaterializer(nil).Materialize(nil))
	assert.False(t, IsTempID("4d6f2a1c"))
}
