// Package client is the HTTP client the command line uses to talk to the
// QuickThoughts API. It implements memo.Backend over the API so the note store
// can persist through the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/memo"
	"github.com/Tzuyuchae/QuickThoughts/pkg/api"
)

var _ memo.Backend = (*Client)(nil)

// Config holds the API location.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the QuickThoughts API with the signed-in user's access token.
type Client struct {
	http   *resty.Client
	logger *zap.Logger

	mu    sync.RWMutex
	token string
}

// New creates a client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)
	return &Client{http: c, logger: logger}
}

// SetToken sets the access token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// Transcribe uploads a clip and returns its classified thoughts.
func (c *Client) Transcribe(ctx context.Context, clip domain.AudioClip) (domain.Transcript, error) {
	if clip.Empty() {
		return domain.Transcript{}, apperrors.NewValidation("audio clip is empty")
	}
	mimeType := clip.MimeType
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	resp, err := c.request(ctx).
		SetMultipartField("audio", clip.FileName(), mimeType, bytes.NewReader(clip.Data)).
		Post("/api/transcribe")

	var out api.TranscribeResponse
	if err := c.decode("transcribe", resp, err, &out); err != nil {
		return domain.Transcript{}, err
	}

	t := domain.Transcript{Transcription: out.Transcription, Thoughts: make([]domain.Thought, 0, len(out.Thoughts))}
	for _, th := range out.Thoughts {
		t.Thoughts = append(t.Thoughts, domain.Thought{Text: th.Text, Label: th.Label, Folder: th.Folder})
	}
	return t, nil
}

// ListFolders returns the signed-in user's folders. userID is implied by the token.
func (c *Client) ListFolders(ctx context.Context, _ string) ([]domain.Folder, error) {
	resp, err := c.request(ctx).Get("/api/folders")
	var out api.FoldersResponse
	if err := c.decode("list folders", resp, err, &out); err != nil {
		return nil, err
	}
	folders := make([]domain.Folder, 0, len(out.Folders))
	for _, f := range out.Folders {
		folders = append(folders, domain.Folder{ID: f.ID, Name: f.Name})
	}
	return folders, nil
}

// ListMemos returns the signed-in user's memos newest first.
func (c *Client) ListMemos(ctx context.Context, _ string) ([]domain.MemoRecord, error) {
	resp, err := c.request(ctx).Get("/api/memos")
	var out api.MemosResponse
	if err := c.decode("list memos", resp, err, &out); err != nil {
		return nil, err
	}
	records := make([]domain.MemoRecord, 0, len(out.Memos))
	for _, m := range out.Memos {
		records = append(records, toRecord(m))
	}
	return records, nil
}

// InsertMemo creates a memo and returns the stored row.
func (c *Client) InsertMemo(ctx context.Context, _ string, m domain.NewMemo) (domain.MemoRecord, error) {
	body := api.CreateMemoRequest{
		Title:         m.Title,
		Transcription: m.Transcription,
		FolderID:      m.FolderID,
		Status:        string(m.Status),
	}
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(&body).
		Post("/api/memos")
	var out api.MemoPayload
	if err := c.decode("insert memo", resp, err, &out); err != nil {
		return domain.MemoRecord{}, err
	}
	return toRecord(out), nil
}

// DeleteMemo deletes a memo by id.
func (c *Client) DeleteMemo(ctx context.Context, _ string, memoID string) error {
	resp, err := c.request(ctx).
		SetPathParam("memoId", memoID).
		Delete("/api/memos/{memoId}")
	return c.decode("delete memo", resp, err, nil)
}

// Profile returns the onboarding state.
func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	resp, err := c.request(ctx).Get("/api/profile")
	var out api.ProfileResponse
	if err := c.decode("get profile", resp, err, &out); err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{ID: out.ID, OnboardingComplete: out.OnboardingComplete}, nil
}

// Onboard creates the chosen folders and marks onboarding complete.
func (c *Client) Onboard(ctx context.Context, folders []string) (domain.Profile, error) {
	if folders == nil {
		folders = []string{}
	}
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(&api.OnboardingRequest{Folders: folders}).
		Post("/api/onboarding")
	var out api.ProfileResponse
	if err := c.decode("onboarding", resp, err, &out); err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{ID: out.ID, OnboardingComplete: out.OnboardingComplete}, nil
}

// Prompt sends a free-text prompt to the model.
func (c *Client) Prompt(ctx context.Context, prompt string) (string, error) {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(&api.PromptRequest{Prompt: prompt}).
		Post("/api/gemini")
	var out api.PromptResponse
	if err := c.decode("prompt", resp, err, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// Health returns the server's health report.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	resp, err := c.request(ctx).Get("/health")
	var out api.HealthResponse
	err = c.decode("health", resp, err, &out)
	return out, err
}

// decode maps transport failures and error statuses to application errors and
// unmarshals a successful body into out when out is non-nil.
func (c *Client) decode(op string, resp *resty.Response, err error, out any) error {
	if err != nil {
		return apperrors.NewRequestFailed(op+" request failed", err)
	}
	if resp.IsError() {
		return statusError(op, resp)
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.logger.Debug("undecodable response", zap.String("op", op), zap.String("body", resp.String()))
		return apperrors.NewMalformedResponse(op+": decode response", err)
	}
	return nil
}

func statusError(op string, resp *resty.Response) error {
	msg := http.StatusText(resp.StatusCode())
	var body api.ErrorResponse
	if json.Unmarshal(resp.Body(), &body) == nil && body.Error != "" {
		msg = body.Error
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return apperrors.NewUnauthorized(msg)
	case http.StatusNotFound:
		return apperrors.NewNotFound(msg)
	case http.StatusBadRequest:
		if msg == "Unauthorized" {
			return apperrors.NewUnauthorized(msg)
		}
		return apperrors.NewValidation(msg)
	default:
		return apperrors.NewRequestFailed(fmt.Sprintf("%s: %s", op, msg), fmt.Errorf("status %d", resp.StatusCode()))
	}
}

func toRecord(m api.MemoPayload) domain.MemoRecord {
	title, text := m.Title, m.Transcription
	rec := domain.MemoRecord{
		ID:            m.ID,
		Title:         &title,
		Transcription: &text,
		Status:        m.Status,
		CreatedAt:     m.CreatedAt,
	}
	if m.FolderID != "" {
		folderID := m.FolderID
		rec.FolderID = &folderID
	}
	return rec
}
