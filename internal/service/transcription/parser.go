package transcription

import (
	"encoding/json"
	"strings"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
)

// StripFences removes a surrounding ``` or ```json code fence, if present.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string, e.g. "json".
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if info := strings.TrimSpace(s[:nl]); !strings.ContainsAny(info, "{[") {
			s = s[nl+1:]
		}
	} else {
		s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Parse validates a raw model reply against the constraint. It fails with a
// malformed-response error when the reply is not a JSON object.
func Parse(raw string, c domain.Constraint) (domain.Transcript, error) {
	return parse(raw, c, domain.MaxThoughtsPerClip)
}

func parse(raw string, c domain.Constraint, limit int) (domain.Transcript, error) {
	if limit <= 0 || limit > domain.MaxThoughtsPerClip {
		limit = domain.MaxThoughtsPerClip
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(StripFences(raw)), &obj); err != nil {
		return domain.Transcript{}, apperrors.NewMalformedResponse("model reply is not a JSON object", err)
	}
	if obj == nil {
		return domain.Transcript{}, apperrors.NewMalformedResponse("model reply is null", nil)
	}

	t := domain.Transcript{Transcription: stringField(obj, "transcription")}

	for _, candidate := range candidates(obj, t.Transcription) {
		fields, ok := candidate.(map[string]any)
		if !ok {
			continue
		}
		text := stringField(fields, "text")
		if text == "" {
			continue
		}
		folder := stringField(fields, "folder")
		if folder == "" {
			folder = stringField(fields, "category")
		}
		t.Thoughts = append(t.Thoughts, domain.Thought{
			Text:   text,
			Label:  stringField(fields, "label"),
			Folder: c.Normalize(folder),
		})
		if len(t.Thoughts) == limit {
			break
		}
	}

	if len(t.Thoughts) == 0 && t.Transcription != "" {
		t = Fallback(t.Transcription, c)
	}
	return t, nil
}

// candidates returns the thought candidates of a reply. Replies in the older
// single-label shape are read as one candidate covering the whole transcription.
func candidates(obj map[string]any, transcription string) []any {
	if list, ok := obj["thoughts"].([]any); ok {
		return list
	}
	if _, has := obj["thoughts"]; has {
		return nil
	}
	if _, hasLabel := obj["label"]; !hasLabel {
		if _, hasCategory := obj["category"]; !hasCategory {
			return nil
		}
	}
	return []any{map[string]any{
		"text":   transcription,
		"label":  obj["label"],
		"folder": obj["category"],
	}}
}

// Fallback returns a transcript holding one synthetic thought that carries the
// whole transcription into the fallback folder.
func Fallback(transcription string, c domain.Constraint) domain.Transcript {
	transcription = strings.TrimSpace(transcription)
	if transcription == "" {
		return domain.Transcript{}
	}
	return domain.Transcript{
		Transcription: transcription,
		Thoughts: []domain.Thought{{
			Text:   transcription,
			Label:  domain.SyntheticThoughtLabel,
			Folder: c.Fallback(),
		}},
		Degraded: true,
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
