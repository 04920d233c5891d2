package middleware

import (
	"net/http"

	firegate "github.com/firegate/firegate"
)

// RequireAdmin authorizes the identity resolved by [Identity] for
// administrative routes. An unauthenticated request gets the same 401 as
// the identity gate; an authenticated non-admin gets 403. The two must
// stay distinguishable so clients can tell "log in" from "not allowed".
func RequireAdmin(engine *firegate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				unauthenticated(w)
				return
			}

			if err := engine.RequireAdmin(r.Context(), identity); err != nil {
				writeJSON(w, http.StatusForbidden, forbiddenBody)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
