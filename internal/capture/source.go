// Package capture records audio from an input device into finite clips.
package capture

// Stream is an open input device delivering interleaved 16-bit samples.
type Stream interface {
	// Read blocks until the next buffer of samples is available.
	Read() ([]int16, error)
	// Close stops the device and releases it.
	Close() error
}

// Opener opens the default input device.
type Opener interface {
	Open(sampleRate, channels int) (Stream, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(sampleRate, channels int) (Stream, error)

// Open calls f.
func (f OpenerFunc) Open(sampleRate, channels int) (Stream, error) {
	return f(sampleRate, channels)
}
