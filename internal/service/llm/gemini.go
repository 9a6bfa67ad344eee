package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
)

// GeminiConfig configures the Gemini REST provider.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiProvider calls the generateContent endpoint of the Gemini API.
type GeminiProvider struct {
	client *resty.Client
	model  string
	apiKey string
	logger *zap.Logger
}

// NewGeminiProvider creates a provider bound to one model.
func NewGeminiProvider(cfg GeminiConfig, logger *zap.Logger) *GeminiProvider {
	base := cfg.BaseURL
	if base == "" {
		base = "https://generativelanguage.googleapis.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetTimeout(timeout)

	return &GeminiProvider{client: c, model: cfg.Model, apiKey: cfg.APIKey, logger: logger}
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// IsAvailable reports whether an API key is configured.
func (p *GeminiProvider) IsAvailable() bool {
	return p.apiKey != "" && p.model != ""
}

// Generate sends the parts as one user turn and returns the concatenated text reply.
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	if !p.IsAvailable() {
		return "", apperrors.NewRequestFailed("gemini provider is not configured", nil)
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: toGeminiParts(req.Parts)}},
	}
	if gc := toGenerationConfig(req.Options); gc != nil {
		body.GenerationConfig = gc
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&body).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", p.model))
	if err != nil {
		return "", apperrors.NewRequestFailed("gemini request failed", err)
	}
	if resp.StatusCode() != http.StatusOK {
		var ge geminiError
		msg := resp.String()
		if json.Unmarshal(resp.Body(), &ge) == nil && ge.Error.Message != "" {
			msg = ge.Error.Message
		}
		p.logger.Warn("gemini returned an error status",
			zap.Int("status", resp.StatusCode()),
			zap.String("message", msg))
		return "", apperrors.NewRequestFailed(fmt.Sprintf("gemini status %d", resp.StatusCode()), fmt.Errorf("%s", msg))
	}

	var gr geminiResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return "", apperrors.NewMalformedResponse("decode gemini response", err)
	}
	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		return "", apperrors.NewRequestFailed("gemini blocked the request: "+gr.PromptFeedback.BlockReason, nil)
	}
	if len(gr.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range gr.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func toGeminiParts(parts []Part) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		if p.IsInline() {
			out = append(out, geminiPart{InlineData: &geminiInlineData{
				MimeType: p.MimeType,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		out = append(out, geminiPart{Text: p.Text})
	}
	return out
}

func toGenerationConfig(o CompletionOptions) *geminiGenerationConfig {
	if o == (CompletionOptions{}) {
		return nil
	}
	gc := &geminiGenerationConfig{MaxOutputTokens: o.MaxTokens}
	if o.Temperature > 0 {
		t := o.Temperature
		gc.Temperature = &t
	}
	if o.Format == "json" {
		gc.ResponseMimeType = "application/json"
	}
	return gc
}
