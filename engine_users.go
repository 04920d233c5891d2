package firegate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Register creates a user record under a fresh id. The email must be
// unique in the subtree; the reserved admin id and email are off limits.
func (e *Engine) Register(ctx context.Context, in CreateUserInput) (Identity, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return Identity{}, ErrInvalidCredentials
	}
	if email == e.config.Admin.Email {
		return Identity{}, ErrReservedUserID
	}

	if _, _, exists := e.lookupUserByEmail(ctx, email); exists {
		e.metricInc(MetricUserDuplicate)
		return Identity{}, ErrAccountExists
	}

	hash, err := e.passwordHash.Hash(in.Password)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	rec := UserRecord{
		Username:     in.Username,
		Email:        email,
		PasswordHash: hash,
		Admin:        in.Admin,
	}

	if !e.store.Write(ctx, userPath(id), rec.value()) {
		return Identity{}, ErrStoreUnavailable
	}

	identity := identityFromRecord(id, rec)
	e.metricInc(MetricUserCreated)
	e.auditEvent(ctx, AuditEvent{
		EventType: EventUserCreated,
		UserID:    id,
		Subject:   email,
		Success:   true,
	})
	return identity, nil
}

// ListUsers returns every decodable record in the users subtree, keyed by
// store id. Malformed nodes are skipped, not reported.
func (e *Engine) ListUsers(ctx context.Context) map[string]UserRecord {
	users := e.store.Read(ctx, UsersPath)
	out := make(map[string]UserRecord, len(users))
	for id, raw := range users {
		rec, ok := userRecordFromValue(raw)
		if !ok {
			continue
		}
		out[id] = rec
	}
	return out
}

// EnsureAdminUser seeds the reserved admin record when the users subtree
// has never seen one. Safe to call on every startup: once a record exists
// under the reserved id it is never overwritten, so a password rotated in
// the store survives restarts with stale configuration.
func (e *Engine) EnsureAdminUser(ctx context.Context) error {
	hash, err := e.passwordHash.Hash(e.config.Admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	rec := UserRecord{
		Username:     e.config.Admin.Username,
		Email:        e.config.Admin.Email,
		PasswordHash: hash,
		Disabled:     e.config.Admin.Disabled,
		Admin:        true,
	}

	if !e.store.EnsureDefault(ctx, userPath(AdminUserID), rec.value()) {
		return ErrStoreUnavailable
	}

	e.metricInc(MetricAdminSeeded)
	e.auditEvent(ctx, AuditEvent{
		EventType: EventAdminSeeded,
		UserID:    AdminUserID,
		Subject:   rec.Email,
		Success:   true,
	})
	return nil
}
