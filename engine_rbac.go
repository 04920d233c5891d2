package firegate

import "context"

// RequireAdmin authorizes identity for administrative operations. The
// admin flag carried in the credential is treated as a hint only: anyone
// other than the reserved admin is re-checked against the store, so
// revoking the flag takes effect before the credential expires.
//
// Returns [ErrForbidden] for an authenticated non-admin; callers surface
// it as 403, distinct from the 401 of a failed [Engine.Resolve].
func (e *Engine) RequireAdmin(ctx context.Context, identity Identity) error {
	if identity.ID == AdminUserID {
		return nil
	}

	rec, ok := userRecordFromValue(e.store.Read(ctx, userPath(identity.ID)))
	if !ok || !rec.Admin || rec.Disabled {
		e.metricInc(MetricForbidden)
		e.auditEvent(ctx, AuditEvent{
			EventType: EventForbidden,
			UserID:    identity.ID,
			Subject:   identity.Email,
			Error:     "admin privileges required",
		})
		return ErrForbidden
	}
	return nil
}
