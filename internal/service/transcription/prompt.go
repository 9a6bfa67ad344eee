// Package transcription turns an audio clip into validated, classified thoughts.
package transcription

import (
	"fmt"
	"strings"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	"github.com/Tzuyuchae/QuickThoughts/internal/service/llm"
)

// defaultMimeType is assumed when a clip arrives without one.
const defaultMimeType = "audio/webm"

// BuildRequest packages one clip and the allowed folders into a single model request.
func BuildRequest(clip domain.AudioClip, c domain.Constraint) llm.Request {
	mimeType := clip.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	return llm.Request{
		Parts: []llm.Part{
			llm.InlinePart(mimeType, clip.Data),
			llm.TextPart(buildPrompt(c)),
		},
		Options: llm.CompletionOptions{
			Temperature: 0.2,
			Format:      "json",
		},
	}
}

func buildPrompt(c domain.Constraint) string {
	var folders strings.Builder
	for _, name := range c.Names() {
		folders.WriteString("- ")
		folders.WriteString(name)
		folders.WriteString("\n")
	}

	return fmt.Sprintf(`You are transcribing a short voice memo and splitting it into separate thoughts.

1. Transcribe the audio accurately.
2. Split the transcription into between 1 and %d distinct thoughts. Each thought is one idea, task or reminder in the speaker's own words.
3. Give each thought a short label of 2 to 5 words.
4. File each thought into exactly one folder from this list, using the name exactly as written:
%s
If no folder fits, use "%s". Never invent a folder name.

Respond with only a JSON object in this shape:
{
  "transcription": "full transcription text",
  "thoughts": [
    {"text": "the thought", "label": "Short Label", "folder": "Folder Name"}
  ]
}
`, domain.MaxThoughtsPerClip, folders.String(), c.Fallback())
}
