package di

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Tzuyuchae/QuickThoughts/internal/config"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
	"github.com/Tzuyuchae/QuickThoughts/internal/repository/mocks"
	"github.com/Tzuyuchae/QuickThoughts/internal/service/llm"
	"github.com/Tzuyuchae/QuickThoughts/pkg/auth"
)

const testSecret = "router-test-secret-router-test-secret"

type testServer struct {
	router *chi.Mux
	repo   *mocks.MockRepository
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.AI.Provider = "mock"
	cfg.Metrics.Namespace = "router_test"

	logger := zap.NewNop()
	metrics := observability.NewCollector(cfg.Metrics.Namespace)
	repo := mocks.NewMockRepository()
	svc := provideTranscriptionService(cfg, provideLLMProvider(cfg, logger), logger, metrics)

	verifier, err := auth.NewJWTVerifier(testSecret)
	require.NoError(t, err)
	token, err := auth.SignTestToken(testSecret, "user-42", "a@example.com", time.Hour)
	require.NoError(t, err)

	router := provideRouter(provideRouterConfig(cfg), provideHandlers(cfg, svc, repo, logger), verifier, metrics, svc, logger)
	return &testServer{router: router, repo: repo, token: token}
}

func (s *testServer) do(req *http.Request, authed bool) *httptest.ResponseRecorder {
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil), false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ai":"available"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_RequiresIdentity(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/memos", "/api/folders", "/api/profile"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, path, nil), false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/memos", nil), true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"memos":[]}`, rec.Body.String())
}

func TestRouter_OnboardThenTranscribe(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/onboarding", strings.NewReader(`{"folders":["Ideas"]}`)), true)
	require.Equal(t, http.StatusOK, rec.Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", "clip.webm")
	require.NoError(t, err)
	_, _ = part.Write([]byte("webm-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = s.do(req, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"Ideas"`)

	folders, err := s.repo.ListFolders(context.Background(), "user-42")
	require.NoError(t, err)
	assert.Len(t, folders, 2)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(httptest.NewRequest(http.MethodGet, "/health", nil), false)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "router_test_http_requests_total")
}

func TestProvideLLMProvider_WrapsInBreaker(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Provider = "mock"
	p := provideLLMProvider(cfg, zap.NewNop())
	_, ok := p.(*llm.BreakerProvider)
	assert.True(t, ok)
	assert.True(t, p.IsAvailable())

	cfg.AI.Provider = "gemini"
	cfg.AI.APIKey = ""
	assert.False(t, provideLLMProvider(cfg, zap.NewNop()).IsAvailable())
}

func TestContainer_ApplyConfigChangesLevel(t *testing.T) {
	cfg := config.Default()
	level := provideLevel(cfg)
	c := &Container{Logger: zap.NewNop(), Level: level}

	next := config.Default()
	next.Logging.Level = "debug"
	c.ApplyConfig(next)
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}
