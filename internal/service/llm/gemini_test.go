package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
)

func newGeminiServer(t *testing.T, status int, reply string, inspect func(*http.Request, geminiRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if inspect != nil {
			inspect(r, body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiProvider_Generate(t *testing.T) {
	audio := []byte("RIFF....WAVEfmt ")
	reply := `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"transcription\":"},{"text":"\"hi\"}"}]}}]}`

	srv := newGeminiServer(t, http.StatusOK, reply, func(r *http.Request, body geminiRequest) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		require.Len(t, body.Contents, 1)
		parts := body.Contents[0].Parts
		require.Len(t, parts, 2)
		require.NotNil(t, parts[0].InlineData)
		assert.Equal(t, "audio/wav", parts[0].InlineData.MimeType)
		assert.Equal(t, base64.StdEncoding.EncodeToString(audio), parts[0].InlineData.Data)
		assert.Equal(t, "classify this", parts[1].Text)
		require.NotNil(t, body.GenerationConfig)
		assert.Equal(t, "application/json", body.GenerationConfig.ResponseMimeType)
	})

	p := NewGeminiProvider(GeminiConfig{APIKey: "secret", Model: "gemini-test", BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop())
	out, err := p.Generate(context.Background(), Request{
		Parts:   []Part{InlinePart("audio/wav", audio), TextPart("classify this")},
		Options: CompletionOptions{Format: "json"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"transcription":"hi"}`, out)
}

func TestGeminiProvider_ErrorStatus(t *testing.T) {
	srv := newGeminiServer(t, http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`, nil)
	p := NewGeminiProvider(GeminiConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, zap.NewNop())

	_, err := p.Generate(context.Background(), Request{Parts: []Part{TextPart("x")}})
	require.Error(t, err)
	assert.True(t, apperrors.IsRequestFailed(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGeminiProvider_NoCandidates(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK, `{"candidates":[]}`, nil)
	p := NewGeminiProvider(GeminiConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, zap.NewNop())

	out, err := p.Generate(context.Background(), Request{Parts: []Part{TextPart("x")}})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGeminiProvider_Unconfigured(t *testing.T) {
	p := NewGeminiProvider(GeminiConfig{Model: "m"}, zap.NewNop())
	assert.False(t, p.IsAvailable())

	_, err := p.Generate(context.Background(), Request{})
	assert.True(t, apperrors.IsRequestFailed(err))
}

func TestBreakerProvider_OpensAfterFailures(t *testing.T) {
	mock := NewMockProvider()
	mock.SetError(apperrors.NewRequestFailed("upstream down", errors.New("503")))

	b := NewBreakerProvider(mock, BreakerConfig{
		Name:             "gemini",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := b.Generate(context.Background(), Request{})
		require.Error(t, err)
	}
	assert.False(t, b.IsAvailable())

	_, err := b.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, apperrors.IsRequestFailed(err))
	assert.Len(t, mock.Calls(), 2, "open circuit must not reach the provider")
}

func TestBreakerProvider_MalformedDoesNotTrip(t *testing.T) {
	mock := NewMockProvider()
	mock.SetError(apperrors.NewMalformedResponse("bad json", nil))

	b := NewBreakerProvider(mock, BreakerConfig{Name: "gemini", MaxRequests: 1, FailureThreshold: 0.1, MinRequests: 1}, zap.NewNop())
	for i := 0; i < 3; i++ {
		_, _ = b.Generate(context.Background(), Request{})
	}
	assert.True(t, b.IsAvailable())
}

func TestMockProvider_DefaultReplyUsesFirstFolder(t *testing.T) {
	m := NewMockProvider()
	out, err := m.Generate(context.Background(), Request{Parts: []Part{TextPart("Allowed folders:\n- Work\n- Unsorted")}})
	require.NoError(t, err)
	assert.Contains(t, out, `"folder":"Work"`)

	m = NewMockProvider("first", "second")
	out, _ = m.Generate(context.Background(), Request{})
	assert.Equal(t, "first", out)
	out, _ = m.Generate(context.Background(), Request{})
	assert.Equal(t, "second", out)
}
