// Package llm talks to the generative model that transcribes and classifies audio.
package llm

import (
	"context"
	"strings"
)

// Provider defines the interface for generative model backends.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	IsAvailable() bool
}

// CompletionOptions configures a generation request
type CompletionOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Format      string  `json:"format"` // "json" or "text"
}

// Part is one piece of a multimodal request: either text or inline binary data.
type Part struct {
	Text     string
	MimeType string
	Data     []byte
}

// IsInline reports whether the part carries binary data.
func (p Part) IsInline() bool {
	return len(p.Data) > 0
}

// TextPart returns a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart returns a binary part with its MIME type.
func InlinePart(mimeType string, data []byte) Part {
	return Part{MimeType: mimeType, Data: data}
}

// Request is one generation call.
type Request struct {
	Parts   []Part
	Options CompletionOptions
}

// Prompt returns the concatenated text parts.
func (r Request) Prompt() string {
	texts := make([]string, 0, len(r.Parts))
	for _, p := range r.Parts {
		if !p.IsInline() {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}
