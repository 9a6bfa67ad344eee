package capture

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV encodes interleaved 16-bit PCM as a WAV file.
func EncodeWAV(samples []int16, sampleRate, channels int) ([]byte, error) {
	// The encoder seeks back to patch chunk sizes, so it needs a file.
	f, err := os.CreateTemp("", "quickthoughts-*.wav")
	if err != nil {
		return nil, err
	}
	defer os.Remove(f.Name())
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i := range samples {
		buf.Data[i] = int(samples[i])
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(f)
}

// WAVDuration computes the duration from the size of the data chunk.
func WAVDuration(data []byte) (time.Duration, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("not a valid wav file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("find pcm data: %w", err)
	}
	if err := dec.Err(); err != nil {
		return 0, fmt.Errorf("read wav header: %w", err)
	}
	byteRate := int64(dec.SampleRate) * int64(dec.NumChans) * int64(dec.BitDepth/8)
	if byteRate == 0 {
		return 0, fmt.Errorf("wav header has no byte rate")
	}
	return time.Duration(dec.PCMLen()) * time.Second / time.Duration(byteRate), nil
}
