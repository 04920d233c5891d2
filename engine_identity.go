package firegate

import (
	"context"
	"fmt"

	"github.com/firegate/firegate/jwt"
)

// Resolve verifies token and maps its claims to a live identity. Every
// verification or lookup failure collapses to [ErrUnauthenticated]; the
// caller must not leak which step failed.
//
// The reserved admin identity is synthesized from configuration without
// touching the store. Everyone else is matched by email against the users
// subtree, so a deleted user is rejected even while their credential is
// still within its TTL.
func (e *Engine) Resolve(ctx context.Context, token string) (Identity, *jwt.Claims, error) {
	claims, err := e.jwtManager.Parse(token)
	if err != nil {
		e.metricInc(MetricAuthRejected)
		e.auditEvent(ctx, AuditEvent{
			EventType: EventAuthRejected,
			Error:     "invalid credential",
		})
		return Identity{}, nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if claims.UserID == AdminUserID {
		identity := e.adminIdentity()
		e.metricInc(MetricAuthSuccess)
		e.auditEvent(ctx, AuditEvent{
			EventType: EventAuthResolved,
			UserID:    identity.ID,
			Subject:   claims.Subject,
			Success:   true,
		})
		return identity, claims, nil
	}

	identity, ok := e.findUserByEmail(ctx, claims.Subject)
	if !ok {
		e.metricInc(MetricAuthRejected)
		e.auditEvent(ctx, AuditEvent{
			EventType: EventAuthRejected,
			Subject:   claims.Subject,
			Error:     "no matching user",
		})
		return Identity{}, nil, fmt.Errorf("%w: unknown subject", ErrUnauthenticated)
	}

	e.metricInc(MetricAuthSuccess)
	e.auditEvent(ctx, AuditEvent{
		EventType: EventAuthResolved,
		UserID:    identity.ID,
		Subject:   claims.Subject,
		Success:   true,
	})
	return identity, claims, nil
}

// adminIdentity builds the configured administrative identity.
func (e *Engine) adminIdentity() Identity {
	return Identity{
		ID:       AdminUserID,
		Email:    e.config.Admin.Email,
		Username: e.config.Admin.Username,
		Active:   !e.config.Admin.Disabled,
		Admin:    true,
	}
}

// findUserByEmail scans the users subtree for a record with the given
// email. The subtree is small and unindexed; a full scan per request
// matches how the store is laid out.
func (e *Engine) findUserByEmail(ctx context.Context, email string) (Identity, bool) {
	if email == "" {
		return Identity{}, false
	}
	users := e.store.Read(ctx, UsersPath)
	for id, raw := range users {
		rec, ok := userRecordFromValue(raw)
		if !ok {
			continue
		}
		if rec.Email == email {
			return identityFromRecord(id, rec), true
		}
	}
	return Identity{}, false
}
