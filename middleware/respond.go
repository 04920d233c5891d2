package middleware

import "net/http"

// Fixed error payloads. Clients pattern-match on these bodies, so they
// are emitted byte for byte rather than built from a struct.
const (
	rateLimitedBody = `{"detail":"Rate limit exceeded. Please try again later."}`

	unauthenticatedBody = `{"status":"error","message":"Not authenticated",` +
		`"detail":"Authentication credentials were not provided or are invalid"}`

	forbiddenBody = `{"detail":"Not authorized. Admin privileges required."}`
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
