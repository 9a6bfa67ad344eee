package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// SupabaseAudience is the aud claim of tokens issued to signed-in users.
const SupabaseAudience = "authenticated"

// Claims represents the claims of a Supabase access token.
type Claims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier validates Supabase access tokens locally with the project's JWT secret.
type JWTVerifier struct {
	secretKey []byte
	audience  string
}

// NewJWTVerifier creates a verifier for HS256 tokens.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("secret key required for HS256")
	}
	return &JWTVerifier{secretKey: []byte(secret), audience: SupabaseAudience}, nil
}

// Verify validates the token and returns the caller's identity.
func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (Identity, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return Identity{}, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
		}
		return v.secretKey, nil
	}, jwt.WithAudience(v.audience), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return Identity{}, ErrInvalidSignature
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return Identity{}, fmt.Errorf("%w: missing user ID", ErrInvalidClaims)
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// SignTestToken issues an HS256 token shaped like a Supabase access token.
// It exists for local development and tests.
func SignTestToken(secret, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   SupabaseAudience,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{SupabaseAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
