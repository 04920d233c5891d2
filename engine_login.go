package firegate

import (
	"context"
	"fmt"
)

// Authenticate checks email and password against the store and returns the
// matching identity. Unknown email and wrong password both come back as
// [ErrInvalidCredentials]; a matching but disabled account is
// [ErrAccountDisabled].
func (e *Engine) Authenticate(ctx context.Context, email, secret string) (Identity, error) {
	id, rec, ok := e.lookupUserByEmail(ctx, email)
	if !ok {
		e.loginFailure(ctx, email, "unknown email")
		return Identity{}, ErrInvalidCredentials
	}

	match, err := e.passwordHash.Verify(secret, rec.PasswordHash)
	if err != nil || !match {
		e.loginFailure(ctx, email, "password mismatch")
		return Identity{}, ErrInvalidCredentials
	}

	if rec.Disabled {
		e.loginFailure(ctx, email, "account disabled")
		return Identity{}, ErrAccountDisabled
	}

	identity := identityFromRecord(id, rec)
	e.metricInc(MetricLoginSuccess)
	e.auditEvent(ctx, AuditEvent{
		EventType: EventLoginSuccess,
		UserID:    identity.ID,
		Subject:   identity.Email,
		Success:   true,
	})
	return identity, nil
}

// IssueToken signs a credential for identity. The subject claim is the
// email; the user id claim is what [Engine.Resolve] dispatches on.
func (e *Engine) IssueToken(identity Identity) (string, error) {
	token, err := e.jwtManager.Issue(identity.Email, identity.ID, identity.Admin)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	e.metricInc(MetricTokenIssued)
	return token, nil
}

// Login authenticates and, on success, issues a credential.
func (e *Engine) Login(ctx context.Context, email, secret string) (Identity, string, error) {
	identity, err := e.Authenticate(ctx, email, secret)
	if err != nil {
		return Identity{}, "", err
	}
	token, err := e.IssueToken(identity)
	if err != nil {
		return Identity{}, "", err
	}
	return identity, token, nil
}

// lookupUserByEmail returns the raw record so callers can reach the
// password hash, unlike findUserByEmail which yields only the identity.
func (e *Engine) lookupUserByEmail(ctx context.Context, email string) (string, UserRecord, bool) {
	if email == "" {
		return "", UserRecord{}, false
	}
	users := e.store.Read(ctx, UsersPath)
	for id, raw := range users {
		rec, ok := userRecordFromValue(raw)
		if !ok {
			continue
		}
		if rec.Email == email {
			return id, rec, true
		}
	}
	return "", UserRecord{}, false
}

func (e *Engine) loginFailure(ctx context.Context, email, reason string) {
	e.metricInc(MetricLoginFailure)
	e.auditEvent(ctx, AuditEvent{
		EventType: EventLoginFailure,
		Subject:   email,
		Error:     reason,
	})
}
