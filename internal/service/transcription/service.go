package transcription

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
	"github.com/Tzuyuchae/QuickThoughts/internal/service/llm"
)

// Service runs one clip through the model and validates the reply.
type Service struct {
	provider    llm.Provider
	logger      *zap.Logger
	metrics     *observability.Collector
	maxThoughts int
}

// NewService creates a transcription service. metrics may be nil.
func NewService(provider llm.Provider, logger *zap.Logger, metrics *observability.Collector, maxThoughts int) *Service {
	return &Service{
		provider:    provider,
		logger:      logger,
		metrics:     metrics,
		maxThoughts: maxThoughts,
	}
}

// IsAvailable returns true if the model provider can take requests.
func (s *Service) IsAvailable() bool {
	return s.provider != nil && s.provider.IsAvailable()
}

// Transcribe sends the clip once and returns the validated transcript. A reply
// that is not valid JSON degrades to a single synthetic thought carrying the
// reply text. Only a reply with no usable text fails.
func (s *Service) Transcribe(ctx context.Context, clip domain.AudioClip, c domain.Constraint) (domain.Transcript, error) {
	if clip.Empty() {
		return domain.Transcript{}, apperrors.NewValidation("audio file is required")
	}

	ctx, span := observability.StartSpan(ctx, "transcription.Transcribe",
		attribute.String("audio.mime_type", clip.MimeType),
		attribute.Int("audio.bytes", len(clip.Data)),
		attribute.Int("folders.count", len(c.Names())))

	transcript, err := s.transcribe(ctx, clip, c)
	if err == nil {
		span.SetAttributes(
			attribute.Int("thoughts.count", len(transcript.Thoughts)),
			attribute.Bool("thoughts.degraded", transcript.Degraded))
	}
	observability.EndSpan(span, err)
	return transcript, err
}

func (s *Service) transcribe(ctx context.Context, clip domain.AudioClip, c domain.Constraint) (domain.Transcript, error) {
	log := observability.LoggerFromContext(ctx, s.logger)

	start := time.Now()
	raw, err := s.provider.Generate(ctx, BuildRequest(clip, c))
	s.metrics.ObserveAI(time.Since(start))
	if err != nil {
		s.metrics.ObserveTranscription(observability.OutcomeFailed, 0)
		log.Error("model request failed", zap.Error(err))
		if apperrors.TypeOf(err) == apperrors.ErrorTypeInternal {
			err = apperrors.NewRequestFailed("transcription request failed", err)
		}
		return domain.Transcript{}, err
	}

	outcome := observability.OutcomeOK
	transcript, err := parse(raw, c, s.maxThoughts)
	if err != nil {
		log.Warn("model reply was not valid JSON, using raw text",
			zap.Error(err),
			zap.Int("reply_length", len(raw)))
		transcript = Fallback(StripFences(raw), c)
		outcome = observability.OutcomeMalformed
	} else if transcript.Degraded {
		outcome = observability.OutcomeDegraded
	}

	if len(transcript.Thoughts) == 0 {
		s.metrics.ObserveTranscription(observability.OutcomeFailed, 0)
		return domain.Transcript{}, apperrors.NewMalformedResponse("model returned no transcription", nil)
	}

	if transcript.Degraded {
		s.metrics.ObserveFallback()
	}
	s.metrics.ObserveTranscription(outcome, len(transcript.Thoughts))
	log.Info("clip transcribed",
		zap.Int("thoughts", len(transcript.Thoughts)),
		zap.String("outcome", outcome))
	return transcript, nil
}

// Complete sends a free-text prompt and returns the model's text reply.
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", apperrors.NewValidation("prompt is required")
	}

	ctx, span := observability.StartSpan(ctx, "transcription.Complete")
	start := time.Now()
	out, err := s.provider.Generate(ctx, llm.Request{Parts: []llm.Part{llm.TextPart(prompt)}})
	s.metrics.ObserveAI(time.Since(start))
	observability.EndSpan(span, err)
	if err != nil {
		return "", err
	}
	return out, nil
}
