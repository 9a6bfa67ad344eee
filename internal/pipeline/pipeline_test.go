package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tzuyuchae/QuickThoughts/internal/capture"
	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/memo"
	"github.com/Tzuyuchae/QuickThoughts/internal/repository/mocks"
)

const userID = "user-1"

type fakeTranscriber struct {
	mu      sync.Mutex
	result  domain.Transcript
	err     error
	gate    chan struct{}
	entered chan struct{}
	clips   []domain.AudioClip
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, clip domain.AudioClip) (domain.Transcript, error) {
	f.mu.Lock()
	f.clips = append(f.clips, clip)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.result, f.err
}

func newStore(t *testing.T, folders ...string) (*memo.Store, *mocks.MockRepository) {
	t.Helper()
	repo := mocks.NewMockRepository()
	require.NoError(t, repo.CreateFolders(context.Background(), userID, append(folders, "Unsorted")))
	store := memo.NewStore(repo, memo.StoreOptions{FallbackFolder: "Unsorted"})
	require.NoError(t, store.SetSession(context.Background(), userID))
	return store, repo
}

func TestProcess_MaterializesIntoStore(t *testing.T) {
	fake := faker.New()
	store, repo := newStore(t, "Work")
	first, second := fake.Lorem().Sentence(5), fake.Lorem().Sentence(6)
	tr := &fakeTranscriber{result: domain.Transcript{
		Transcription: first + " " + second,
		Thoughts: []domain.Thought{
			{Text: first, Label: "First", Folder: "Work"},
			{Text: second, Label: "", Folder: "Personal"},
		},
	}}
	p := New(tr, store, Options{})

	clip := domain.AudioClip{MimeType: "audio/wav", Data: []byte("RIFF"), Duration: 3 * time.Second}
	drafts, err := p.Process(context.Background(), clip)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "First", drafts[0].Title)
	assert.Equal(t, "Memo 2", drafts[1].Title)
	assert.Equal(t, "Unsorted", drafts[1].Folder)
	assert.Equal(t, 3.0, drafts[0].Duration)
	assert.True(t, memo.IsTempID(drafts[0].ID))

	store.Wait()
	notes := store.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, first, notes[0].Transcription)
	assert.Equal(t, memo.SyncConfirmed, notes[0].State)
	assert.Equal(t, 2, repo.MemoCount(userID))
}

func TestProcess_CapsThoughts(t *testing.T) {
	store, _ := newStore(t)
	thoughts := make([]domain.Thought, 12)
	for i := range thoughts {
		thoughts[i] = domain.Thought{Text: "t", Label: "L", Folder: "Unsorted"}
	}
	p := New(&fakeTranscriber{result: domain.Transcript{Thoughts: thoughts}}, store, Options{MaxThoughts: 20})

	drafts, err := p.Process(context.Background(), domain.AudioClip{Data: []byte("x")})
	require.NoError(t, err)
	assert.Len(t, drafts, domain.MaxThoughtsPerClip)
	store.Wait()
}

func TestProcess_Errors(t *testing.T) {
	store, repo := newStore(t)

	p := New(&fakeTranscriber{}, store, Options{})
	_, err := p.Process(context.Background(), domain.AudioClip{})
	assert.True(t, apperrors.IsValidation(err))

	failing := New(&fakeTranscriber{err: apperrors.NewRequestFailed("boom", nil)}, store, Options{})
	_, err = failing.Process(context.Background(), domain.AudioClip{Data: []byte("x")})
	assert.True(t, apperrors.IsRequestFailed(err))

	empty := New(&fakeTranscriber{result: domain.Transcript{Thoughts: []domain.Thought{{Text: ""}}}}, store, Options{})
	_, err = empty.Process(context.Background(), domain.AudioClip{Data: []byte("x")})
	assert.True(t, apperrors.IsMalformedResponse(err))

	assert.Empty(t, store.Notes())
	assert.Equal(t, 0, repo.MemoCount(userID))
	assert.False(t, p.Busy())
}

func TestProcess_RejectsConcurrentCapture(t *testing.T) {
	store, _ := newStore(t)
	tr := &fakeTranscriber{
		result:  domain.Transcript{Thoughts: []domain.Thought{{Text: "a", Label: "A", Folder: "Unsorted"}}},
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	p := New(tr, store, Options{})

	done := make(chan error, 1)
	go func() {
		_, err := p.Process(context.Background(), domain.AudioClip{Data: []byte("x")})
		done <- err
	}()
	<-tr.entered
	assert.True(t, p.Busy())

	_, err := p.Process(context.Background(), domain.AudioClip{Data: []byte("y")})
	assert.True(t, errors.Is(err, ErrCaptureInFlight))

	close(tr.gate)
	require.NoError(t, <-done)
	store.Wait()
	assert.Len(t, store.Notes(), 1)
	assert.False(t, p.Busy())
}

type toneStream struct{}

func (toneStream) Read() ([]int16, error) {
	time.Sleep(time.Millisecond)
	return make([]int16, 80), nil
}

func (toneStream) Close() error { return nil }

func TestRecord_ProcessesFinishedSession(t *testing.T) {
	store, _ := newStore(t)
	tr := &fakeTranscriber{result: domain.Transcript{Thoughts: []domain.Thought{{Text: "hi", Label: "Hi", Folder: "Unsorted"}}}}
	p := New(tr, store, Options{})

	opener := capture.OpenerFunc(func(int, int) (capture.Stream, error) { return toneStream{}, nil })
	rec := capture.NewRecorder(opener, capture.Config{MaxDuration: 20 * time.Millisecond, SampleRate: 8000, Channels: 1}, nil)
	session, err := rec.Start(context.Background())
	require.NoError(t, err)

	drafts, err := p.Record(context.Background(), session)
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	require.Len(t, tr.clips, 1)
	assert.Equal(t, "audio/wav", tr.clips[0].MimeType)
	assert.Greater(t, drafts[0].Duration, 0.0)
	store.Wait()
}
