// Package pipeline runs one capture through transcription, materialization and
// the note store.
package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/capture"
	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/memo"
)

// ErrCaptureInFlight is returned when a capture is started while another is
// still being processed.
var ErrCaptureInFlight = errors.New("a capture is already being processed")

// Transcriber turns a clip into classified thoughts.
type Transcriber interface {
	Transcribe(ctx context.Context, clip domain.AudioClip) (domain.Transcript, error)
}

// Options configures a Pipeline.
type Options struct {
	Logger      *zap.Logger
	MaxThoughts int
	Now         func() time.Time
}

// Pipeline processes one capture at a time.
type Pipeline struct {
	transcriber  Transcriber
	store        *memo.Store
	materializer *memo.Materializer
	logger       *zap.Logger
	maxThoughts  int

	busy atomic.Bool
}

// New creates a pipeline writing into store.
func New(transcriber Transcriber, store *memo.Store, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxThoughts <= 0 || opts.MaxThoughts > domain.MaxThoughtsPerClip {
		opts.MaxThoughts = domain.MaxThoughtsPerClip
	}
	return &Pipeline{
		transcriber:  transcriber,
		store:        store,
		materializer: memo.NewMaterializer(opts.Now),
		logger:       opts.Logger,
		maxThoughts:  opts.MaxThoughts,
	}
}

// Busy reports whether a capture is being processed.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// Record waits for the session to end and processes its clip. A session that
// failed or produced no audio adds nothing.
func (p *Pipeline) Record(ctx context.Context, session *capture.Session) ([]domain.Memo, error) {
	if !p.busy.CompareAndSwap(false, true) {
		session.Stop()
		return nil, ErrCaptureInFlight
	}
	defer p.busy.Store(false)

	clip, err := session.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return p.process(ctx, clip)
}

// Process handles a finished clip, such as a selected file.
func (p *Pipeline) Process(ctx context.Context, clip domain.AudioClip) ([]domain.Memo, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrCaptureInFlight
	}
	defer p.busy.Store(false)
	return p.process(ctx, clip)
}

func (p *Pipeline) process(ctx context.Context, clip domain.AudioClip) ([]domain.Memo, error) {
	if clip.Empty() {
		return nil, apperrors.NewValidation("no audio captured")
	}

	transcript, err := p.transcriber.Transcribe(ctx, clip)
	if err != nil {
		p.logger.Error("transcription failed", zap.Error(err))
		return nil, err
	}

	thoughts := constrain(transcript.Thoughts, p.store.Constraint(), p.maxThoughts)
	if len(thoughts) == 0 {
		return nil, apperrors.NewMalformedResponse("transcription returned no thoughts", nil)
	}

	drafts := p.materializer.Materialize(thoughts)
	for i := range drafts {
		drafts[i].Duration = clip.Duration.Seconds()
	}
	p.store.Insert(ctx, drafts...)

	p.logger.Info("capture processed",
		zap.Int("thoughts", len(drafts)),
		zap.Duration("duration", clip.Duration))
	return drafts, nil
}

// constrain re-checks folders against the locally cached folder set, which can
// differ from the set the server saw, and caps the count.
func constrain(thoughts []domain.Thought, c domain.Constraint, limit int) []domain.Thought {
	if len(thoughts) > limit {
		thoughts = thoughts[:limit]
	}
	out := make([]domain.Thought, 0, len(thoughts))
	for _, t := range thoughts {
		if t.Text == "" {
			continue
		}
		t.Folder = c.Normalize(t.Folder)
		out = append(out, t)
	}
	return out
}
