package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Tzuyuchae/QuickThoughts/internal/capture"
	"github.com/Tzuyuchae/QuickThoughts/internal/client"
	apperrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/memo"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
	"github.com/Tzuyuchae/QuickThoughts/internal/pipeline"
	"github.com/Tzuyuchae/QuickThoughts/internal/snapshot"
	"github.com/Tzuyuchae/QuickThoughts/pkg/auth"
)

// app is the signed-in client: API client, note store and local snapshot.
type app struct {
	logger   *zap.Logger
	session  auth.Session
	client   *client.Client
	store    *memo.Store
	snap     *snapshot.Store
	pipeline *pipeline.Pipeline
}

func (r *root) logger() *zap.Logger {
	logger, err := observability.NewCLILogger(r.v.GetString(keyLogLevel))
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (r *root) session() auth.Session {
	return auth.Session{
		AccessToken:  r.v.GetString(keyAccessToken),
		RefreshToken: r.v.GetString(keyRefreshToken),
		UserID:       r.v.GetString(keyUserID),
		Email:        r.v.GetString(keyEmail),
		ExpiresAt:    r.v.GetTime(keyExpiresAt),
	}
}

func (r *root) newClient(logger *zap.Logger) *client.Client {
	return client.New(client.Config{
		BaseURL: r.v.GetString(keyAPIURL),
		Timeout: r.v.GetDuration(keyTimeout),
	}, logger)
}

// open signs in from the saved session, loads the user's folders and notes and
// restores notes that failed to sync in an earlier run.
func (r *root) open(ctx context.Context) (*app, error) {
	session := r.session()
	if session.Expired(time.Now()) {
		return nil, fmt.Errorf("not signed in or session expired: run 'quickthoughts login'")
	}

	logger := r.logger()
	c := r.newClient(logger)
	c.SetToken(session.AccessToken)

	snap, err := snapshot.Open(r.v.GetString(keySnapshotPath))
	if err != nil {
		return nil, err
	}

	store := memo.NewStore(c, memo.StoreOptions{
		Logger:         logger,
		FallbackFolder: r.v.GetString(keyFallbackFolder),
	})
	if err := store.SetSession(ctx, session.UserID); err != nil {
		if apperrors.IsUnauthorized(err) {
			snap.Close()
			return nil, fmt.Errorf("session rejected, run 'quickthoughts login': %w", err)
		}
		logger.Warn("could not load notes from the server", zap.Error(err))
	}

	unsynced, err := snap.Load(session.UserID)
	if err != nil {
		logger.Warn("failed to read local snapshot", zap.Error(err))
	}
	store.Restore(unsynced)

	return &app{
		logger:   logger,
		session:  session,
		client:   c,
		store:    store,
		snap:     snap,
		pipeline: pipeline.New(c, store, pipeline.Options{Logger: logger}),
	}, nil
}

// close waits for background persistence and saves what is still unsynced.
func (a *app) close() error {
	a.store.Wait()
	err := a.snap.Save(a.session.UserID, a.store.Unsynced())
	if cerr := a.snap.Close(); err == nil {
		err = cerr
	}
	_ = a.logger.Sync()
	return err
}

func (r *root) captureConfig() capture.Config {
	return capture.Config{
		MaxDuration: r.v.GetDuration(keyMaxDuration),
		SampleRate:  r.v.GetInt(keySampleRate),
		Channels:    r.v.GetInt(keyChannels),
	}
}
