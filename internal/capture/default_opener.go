//go:build !portaudio

package capture

import (
	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
)

// DefaultOpener reports that no input device is available. Build with the
// portaudio tag to record from the microphone.
func DefaultOpener() Opener {
	return OpenerFunc(func(int, int) (Stream, error) {
		return nil, apperrors.NewDeviceUnavailable("microphone capture requires a build with -tags portaudio", nil)
	})
}
