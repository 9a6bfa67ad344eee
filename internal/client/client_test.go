package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/pkg/api"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	c.SetToken("tok")
	return c
}

func TestClient_Transcribe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/transcribe", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("audio")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "RIFFdata", string(data))
		assert.Equal(t, "recording.wav", header.Filename)
		assert.Equal(t, "audio/wav", header.Header.Get("Content-Type"))

		writeJSON(w, http.StatusOK, api.TranscribeResponse{
			Transcription: "hello",
			Thoughts:      []api.ThoughtPayload{{Text: "hello", Folder: "Ideas", Label: "Hi"}},
		})
	})
	c := newTestClient(t, mux)

	got, err := c.Transcribe(context.Background(), domain.AudioClip{MimeType: "audio/wav", Data: []byte("RIFFdata")})
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Transcription)
	assert.Equal(t, []domain.Thought{{Text: "hello", Folder: "Ideas", Label: "Hi"}}, got.Thoughts)
}

func TestClient_TranscribeEmptyClip(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := c.Transcribe(context.Background(), domain.AudioClip{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestClient_MemoRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/folders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.FoldersResponse{Folders: []api.FolderPayload{{ID: "f1", Name: "Ideas"}}})
	})
	mux.HandleFunc("/api/memos", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, api.MemosResponse{Memos: []api.MemoPayload{
				{ID: "m1", Title: "One", FolderID: "f1", Folder: "Ideas", Status: "ready", CreatedAt: &created},
			}})
		case http.MethodPost:
			var req api.CreateMemoRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "f1", req.FolderID)
			writeJSON(w, http.StatusCreated, api.MemoPayload{ID: "m2", Title: req.Title, FolderID: req.FolderID, Status: "ready", CreatedAt: &created})
		}
	})
	mux.HandleFunc("/api/memos/m2", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	folders, err := c.ListFolders(ctx, "ignored")
	require.NoError(t, err)
	assert.Equal(t, []domain.Folder{{ID: "f1", Name: "Ideas"}}, folders)

	memos, err := c.ListMemos(ctx, "ignored")
	require.NoError(t, err)
	require.Len(t, memos, 1)
	assert.Equal(t, "f1", *memos[0].FolderID)

	rec, err := c.InsertMemo(ctx, "ignored", domain.NewMemo{Title: "Two", FolderID: "f1", Status: domain.MemoStatusReady})
	require.NoError(t, err)
	assert.Equal(t, "m2", rec.ID)
	assert.Equal(t, "Two", *rec.Title)

	require.NoError(t, c.DeleteMemo(ctx, "ignored", "m2"))
}

func TestClient_ErrorMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: "Authentication required"})
	})
	mux.HandleFunc("/api/gemini", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "Prompt is required"})
	})
	mux.HandleFunc("/api/onboarding", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, api.ErrorResponse{Error: "Service temporarily unavailable"})
	})
	mux.HandleFunc("/api/folders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not json"))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.Profile(ctx)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = c.Prompt(ctx, "")
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Prompt is required")

	_, err = c.Onboard(ctx, nil)
	assert.True(t, apperrors.IsRequestFailed(err))

	_, err = c.ListFolders(ctx, "")
	assert.True(t, apperrors.IsMalformedResponse(err))
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(Config{BaseURL: srv.URL, Timeout: time.Second}, nil)

	_, err := c.Health(context.Background())
	assert.True(t, apperrors.IsRequestFailed(err))
}
