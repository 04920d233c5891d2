package middleware

import (
	"net"
	"net/http"
	"strings"

	firegate "github.com/firegate/firegate"
)

// KeyFunc derives the admission bucket key for a request. Every request
// with the same key shares one bucket.
type KeyFunc func(*http.Request) string

// ClientIP keys on the transport peer address, ignoring proxy headers.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ForwardedClientIP keys on the first X-Forwarded-For hop, falling back
// to the peer address when the header is absent.
func ForwardedClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return ClientIP(r)
}

// Admission gates every request through the engine's token bucket. Denied
// requests get a fixed 429 body and never reach the next handler. The
// derived client key is stored in the request context for downstream
// audit records.
//
// A nil key selects [ClientIP] or [ForwardedClientIP] from the engine's
// configuration.
func Admission(engine *firegate.Engine, key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		if engine != nil && engine.TrustForwardedFor() {
			key = ForwardedClientIP
		} else {
			key = ClientIP
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			ctx := firegate.WithClientIP(r.Context(), k)
			ctx = firegate.WithRequestPath(ctx, r.URL.Path)
			r = r.WithContext(ctx)

			if !engine.Admit(ctx, k) {
				writeJSON(w, http.StatusTooManyRequests, rateLimitedBody)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
