package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
)

// MaxFileBytes bounds clips loaded from disk.
const MaxFileBytes = 25 << 20

var mimeByExt = map[string]string{
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".flac": "audio/flac",
	".aac":  "audio/aac",
}

// MimeTypeFor returns the audio MIME type for a file name.
func MimeTypeFor(name string) (string, bool) {
	mt, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]
	return mt, ok
}

// LoadFile reads an existing audio file as a clip.
func LoadFile(path string) (domain.AudioClip, error) {
	mimeType, ok := MimeTypeFor(path)
	if !ok {
		return domain.AudioClip{}, apperrors.NewValidation(fmt.Sprintf("unsupported audio file type %q", filepath.Ext(path)))
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxFileBytes {
		return domain.AudioClip{}, apperrors.NewValidation("audio file is too large")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return domain.AudioClip{}, apperrors.NewValidation("audio file is empty")
	}

	clip := domain.AudioClip{
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Data:     data,
	}
	if mimeType == "audio/wav" {
		if d, err := WAVDuration(data); err == nil {
			clip.Duration = d
		}
	}
	return clip, nil
}
