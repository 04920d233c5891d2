package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	firegate "github.com/firegate/firegate"
	"github.com/firegate/firegate/jwt"
)

// DefaultPublicPrefixes lists the path prefixes that bypass credential
// checks: health probes, the credential endpoints themselves, API docs,
// and static assets.
func DefaultPublicPrefixes() []string {
	return []string{
		"/health",
		"/api/v1/health",
		"/api/v1/auth/login",
		"/api/v1/auth/login-json",
		"/api/v1/auth/register",
		"/api/v1/auth/token",
		"/api/v1/auth/forgot-password",
		"/api/v1/auth/reset-password",
		"/docs",
		"/redoc",
		"/openapi.json",
		"/favicon.ico",
		"/static/",
	}
}

type identityContextKey struct{}

type claimsContextKey struct{}

// IdentityFromContext returns the identity stored by [Identity].
func IdentityFromContext(ctx context.Context) (firegate.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(firegate.Identity)
	return id, ok
}

// ClaimsFromContext returns the verified claims stored by [Identity].
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims, ok
}

// Identity authenticates every request outside the public allow-list.
// Missing header, malformed header, bad signature, expiry, and unknown
// subject all produce the same 401 body with a WWW-Authenticate
// challenge; nothing about the failure mode leaks to the client.
//
// A nil publicPrefixes selects [DefaultPublicPrefixes]. Pass an empty
// slice to protect every path.
func Identity(engine *firegate.Engine, publicPrefixes []string) func(http.Handler) http.Handler {
	if publicPrefixes == nil {
		publicPrefixes = DefaultPublicPrefixes()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path, publicPrefixes) {
				engine.NotePublicBypass(r.Context(), r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			ctx := firegate.WithRequestPath(r.Context(), r.URL.Path)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				log.Warn().Str("path", r.URL.Path).Msg("request without bearer credentials")
				engine.NoteAuthRejected(ctx, r.URL.Path, "missing bearer credentials")
				unauthenticated(w)
				return
			}

			identity, claims, err := engine.Resolve(ctx, token)
			if err != nil {
				// The token itself is never logged.
				log.Warn().Str("path", r.URL.Path).Msg("credential rejected")
				unauthenticated(w)
				return
			}

			ctx = context.WithValue(ctx, identityContextKey{}, identity)
			ctx = context.WithValue(ctx, claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublicPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, unauthenticatedBody)
}
