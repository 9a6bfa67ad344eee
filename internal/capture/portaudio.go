//go:build portaudio

package capture

import (
	"github.com/gordonklaus/portaudio"

	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
)

const framesPerBuffer = 1024

// DefaultOpener opens the system default input device through PortAudio.
func DefaultOpener() Opener {
	return OpenerFunc(openPortAudio)
}

type portAudioStream struct {
	stream *portaudio.Stream
	in     []int16
}

func openPortAudio(sampleRate, channels int) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, apperrors.NewDeviceUnavailable("portaudio init failed", err)
	}

	in := make([]int16, framesPerBuffer*channels)
	stream, err := portaudio.OpenDefaultStream(channels, 0, float64(sampleRate), framesPerBuffer, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, apperrors.NewDeviceUnavailable("open input stream failed", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, apperrors.NewDeviceUnavailable("start input stream failed", err)
	}
	return &portAudioStream{stream: stream, in: in}, nil
}

func (s *portAudioStream) Read() ([]int16, error) {
	if err := s.stream.Read(); err != nil {
		return nil, err
	}
	out := make([]int16, len(s.in))
	copy(out, s.in)
	return out, nil
}

func (s *portAudioStream) Close() error {
	_ = s.stream.Stop()
	err := s.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
