package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
)

// DefaultMaxDuration caps a single recording.
const DefaultMaxDuration = 2 * time.Minute

// ErrAlreadyRecording is returned when a session is already active.
var ErrAlreadyRecording = errors.New("a recording is already in progress")

// StopReason says why a session finished.
type StopReason string

const (
	StopManual    StopReason = "manual"
	StopCeiling   StopReason = "ceiling"
	StopCancelled StopReason = "cancelled"
	StopError     StopReason = "error"
)

// Config bounds and formats recordings.
type Config struct {
	MaxDuration time.Duration
	SampleRate  int
	Channels    int
}

func (c Config) withDefaults() Config {
	if c.MaxDuration <= 0 {
		c.MaxDuration = DefaultMaxDuration
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	return c
}

// Recorder starts capture sessions on one input device, one at a time.
type Recorder struct {
	opener Opener
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	active *Session
}

// NewRecorder creates a recorder.
func NewRecorder(opener Opener, cfg Config, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{opener: opener, cfg: cfg.withDefaults(), logger: logger}
}

// Start opens the device and begins recording. The session ends on Stop, when
// the maximum duration is reached, or when ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return nil, ErrAlreadyRecording
	}

	stream, err := r.opener.Open(r.cfg.SampleRate, r.cfg.Channels)
	if err != nil {
		if apperrors.IsDeviceUnavailable(err) {
			return nil, err
		}
		return nil, apperrors.NewDeviceUnavailable("could not access microphone", err)
	}

	s := &Session{
		cfg:     r.cfg,
		stream:  stream,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
		started: time.Now(),
	}
	r.active = s
	go func() {
		s.run(ctx, r.logger)
		r.mu.Lock()
		if r.active == s {
			r.active = nil
		}
		r.mu.Unlock()
	}()
	return s, nil
}

// Active reports whether a session is recording.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Session is one recording. It finalizes exactly once.
type Session struct {
	cfg      Config
	stream   Stream
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
	started  time.Time

	clip   domain.AudioClip
	err    error
	reason StopReason
}

// Stop ends the recording. Calling it more than once, or after the ceiling was
// reached, has no effect.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Done is closed once the clip is finalized.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Elapsed returns the time since recording started.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.started)
}

// Result returns the clip and why the session stopped. It blocks until Done.
func (s *Session) Result() (domain.AudioClip, StopReason, error) {
	<-s.done
	return s.clip, s.reason, s.err
}

// Wait blocks until the session finishes or ctx ends.
func (s *Session) Wait(ctx context.Context) (domain.AudioClip, error) {
	select {
	case <-s.done:
		return s.clip, s.err
	case <-ctx.Done():
		return domain.AudioClip{}, ctx.Err()
	}
}

func (s *Session) run(ctx context.Context, logger *zap.Logger) {
	defer close(s.done)

	maxSamples := int(s.cfg.MaxDuration.Seconds() * float64(s.cfg.SampleRate) * float64(s.cfg.Channels))
	samples := make([]int16, 0, s.cfg.SampleRate*s.cfg.Channels*10)

	ceiling := time.NewTimer(s.cfg.MaxDuration)
	defer ceiling.Stop()

	reason := s.record(ctx, ceiling.C, maxSamples, &samples)

	if err := s.stream.Close(); err != nil {
		logger.Warn("failed to release input device", zap.Error(err))
	}

	s.reason = reason
	switch reason {
	case StopCancelled:
		s.err = ctx.Err()
		return
	case StopError:
		return
	}

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	data, err := EncodeWAV(samples, s.cfg.SampleRate, s.cfg.Channels)
	if err != nil {
		s.err = fmt.Errorf("encode recording: %w", err)
		return
	}
	s.clip = domain.AudioClip{
		Name:     "recording.wav",
		MimeType: "audio/wav",
		Data:     data,
		Duration: samplesDuration(len(samples), s.cfg.SampleRate, s.cfg.Channels),
	}
	logger.Info("recording finished",
		zap.String("reason", string(reason)),
		zap.Duration("duration", s.clip.Duration),
		zap.Int("bytes", len(data)))
}

// record reads until a stop condition and returns which one fired.
func (s *Session) record(ctx context.Context, ceiling <-chan time.Time, maxSamples int, samples *[]int16) StopReason {
	for {
		select {
		case <-s.stopCh:
			return StopManual
		case <-ceiling:
			return StopCeiling
		case <-ctx.Done():
			return StopCancelled
		default:
		}

		buf, err := s.stream.Read()
		if err != nil {
			s.err = apperrors.NewDeviceUnavailable("input device stopped delivering audio", err)
			return StopError
		}
		*samples = append(*samples, buf...)
		if len(*samples) >= maxSamples {
			return StopCeiling
		}
	}
}

func samplesDuration(n, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	frames := n / channels
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
