package firegate

import "errors"

var (
	// ErrEngineNotReady reports use of an Engine that was not built.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrRateLimited reports an admission denial. Transient: the caller
	// should back off and retry. Never logged as an error.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnauthenticated covers every credential failure — missing,
	// malformed, expired, bad signature, unknown subject. Callers never
	// learn which one; the distinction stays in the logs.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden reports a valid identity lacking the required role.
	// Distinct from ErrUnauthenticated in every response path.
	ErrForbidden = errors.New("admin privileges required")
	// ErrInvalidCredentials reports a failed email/password login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound reports an identity lookup that matched nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountDisabled reports a login against a disabled record.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountExists reports a registration against a taken email.
	ErrAccountExists = errors.New("account already exists")
	// ErrStoreUnavailable reports a store mutation the backend refused.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrReservedUserID reports an attempt to register the administrative
	// identity.
	ErrReservedUserID = errors.New("user id is reserved")
)
