package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	sharedContext "github.com/Tzuyuchae/QuickThoughts/internal/context"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
	"github.com/Tzuyuchae/QuickThoughts/pkg/auth"
)

// AccessTokenCookie is the cookie browsers send the Supabase session in.
const AccessTokenCookie = "sb-access-token"

// BearerToken returns the token from the Authorization header or the session cookie.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate resolves the caller's identity and stores the user id and token in
// the request context. Requests without a valid token pass through unauthenticated;
// handlers decide how to reject them.
func Authenticate(verifier auth.Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				observability.LoggerFromContext(r.Context(), logger).Info("rejected access token",
					zap.String("path", r.URL.Path), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := sharedContext.WithUserID(r.Context(), identity.UserID)
			ctx = sharedContext.WithAccessToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
