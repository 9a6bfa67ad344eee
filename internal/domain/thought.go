package domain

// MaxThoughtsPerClip bounds how many thoughts one clip can produce.
const MaxThoughtsPerClip = 10

// SyntheticThoughtLabel titles the single thought produced when the model returns
// a transcription but no usable thoughts.
const SyntheticThoughtLabel = "Voice Memo"

// Thought is one idea extracted from a clip.
type Thought struct {
	Text   string `json:"text"`
	Label  string `json:"label"`
	Folder string `json:"folder"`
}

// Transcript is the validated outcome of classifying one clip.
type Transcript struct {
	Transcription string
	Thoughts      []Thought
	// Degraded is set when the thoughts came from the synthetic fallback.
	Degraded bool
}
