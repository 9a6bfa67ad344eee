// Package auth verifies Supabase access tokens and signs users in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	supa "github.com/supabase-community/supabase-go"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
}

// Verifier resolves an access token to an identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// SupabaseVerifier asks GoTrue who owns a token.
type SupabaseVerifier struct {
	client *supa.Client
}

// NewSupabaseVerifier creates a verifier against the project's auth endpoint.
func NewSupabaseVerifier(url, key string) (*SupabaseVerifier, error) {
	client, err := supa.NewClient(strings.TrimRight(url, "/"), key, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create supabase client: %w", err)
	}
	return &SupabaseVerifier{client: client}, nil
}

// Verify calls GET /auth/v1/user with the token.
func (v *SupabaseVerifier) Verify(_ context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Identity{UserID: user.ID.String(), Email: user.Email}, nil
}

// ChainVerifier tries local verification first and falls back to GoTrue for
// tokens it cannot validate itself.
type ChainVerifier struct {
	verifiers []Verifier
}

// NewChainVerifier builds a chain, skipping nil entries.
func NewChainVerifier(verifiers ...Verifier) *ChainVerifier {
	c := &ChainVerifier{}
	for _, v := range verifiers {
		if v != nil {
			c.verifiers = append(c.verifiers, v)
		}
	}
	return c
}

// Verify returns the first successful identity. Expired tokens stop the chain.
func (c *ChainVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	err := ErrInvalidToken
	for _, v := range c.verifiers {
		id, verr := v.Verify(ctx, token)
		if verr == nil {
			return id, nil
		}
		err = verr
		if errors.Is(verr, ErrExpiredToken) || errors.Is(verr, ErrMissingToken) {
			break
		}
	}
	return Identity{}, err
}

// Session is a signed-in user's token pair.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is past its expiry.
func (s Session) Expired(now time.Time) bool {
	return s.AccessToken == "" || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

// PasswordAuthenticator signs users in with email and password.
type PasswordAuthenticator struct {
	client *supa.Client
	now    func() time.Time
}

// NewPasswordAuthenticator creates an authenticator using the anon key.
func NewPasswordAuthenticator(url, anonKey string) (*PasswordAuthenticator, error) {
	client, err := supa.NewClient(strings.TrimRight(url, "/"), anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create supabase client: %w", err)
	}
	return &PasswordAuthenticator{client: client, now: time.Now}, nil
}

// SignIn exchanges credentials for a session.
func (a *PasswordAuthenticator) SignIn(email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, errors.New("email and password are required")
	}
	resp, err := a.client.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return Session{}, fmt.Errorf("sign in failed: %w", err)
	}
	return Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.User.ID.String(),
		Email:        resp.User.Email,
		ExpiresAt:    a.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}
