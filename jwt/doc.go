// Package jwt mints and verifies the signed bearer credentials that carry a
// caller's subject, user id, and admin hint between requests.
//
// Verification is a pure function of (token, secret, clock): no store or
// network call is involved, which is what makes per-request verification
// cheap. Signature mismatch, malformed structure, and expiry all surface as
// parse errors; callers collapse them into a single unauthenticated outcome.
package jwt
