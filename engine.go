package firegate

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/firegate/firegate/internal/rate"
	"github.com/firegate/firegate/jwt"
	"github.com/firegate/firegate/password"
)

// Engine owns the gate pipeline's shared state: the signing manager, the
// admission bucket store, the remote store client, and the audit and
// metrics fan-out. Build exactly one per process via [Builder.Build];
// all methods are safe for concurrent use afterwards.
type Engine struct {
	config       Config
	jwtManager   *jwt.Manager
	limiter      rate.Store
	store        Store
	passwordHash *password.Hasher
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close flushes the audit dispatcher. The store client is owned by whoever
// constructed it and is not torn down here.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Admit consumes one token from the bucket for key and reports whether the
// request may proceed. A denial must surface to the caller as "too many
// requests" and nothing else; it is not retried or queued here.
func (e *Engine) Admit(ctx context.Context, key string) bool {
	allowed, err := e.limiter.Allow(ctx, key)
	if err != nil {
		// Fail open: the bucket backend being down must not take the
		// whole API with it.
		log.Warn().Err(err).Str("key", key).Msg("admission check failed, allowing request")
		return true
	}

	if !allowed {
		e.metricInc(MetricAdmissionDenied)
		e.auditEvent(ctx, AuditEvent{
			EventType: EventAdmissionDenied,
			IP:        key,
		})
		return false
	}

	e.metricInc(MetricAdmissionAllowed)
	return true
}

// NotePublicBypass records that a request skipped credential checks via
// the public allow-list. Counting these is the only trace a public
// request leaves in the gate.
func (e *Engine) NotePublicBypass(ctx context.Context, path string) {
	e.metricInc(MetricPublicBypass)
	e.auditEvent(ctx, AuditEvent{
		EventType: EventAuthBypass,
		Path:      path,
		Success:   true,
	})
}

// NoteAuthRejected records a request turned away before credential
// verification could even start, such as a missing or malformed
// Authorization header. Rejections inside [Engine.Resolve] are recorded
// there; this covers the ones that never reach it.
func (e *Engine) NoteAuthRejected(ctx context.Context, path, reason string) {
	e.metricInc(MetricAuthRejected)
	e.auditEvent(ctx, AuditEvent{
		EventType: EventAuthRejected,
		Path:      path,
		Error:     reason,
	})
}

// TrustForwardedFor reports whether admission keys may come from the
// X-Forwarded-For header. Only enable behind a proxy that overwrites it.
func (e *Engine) TrustForwardedFor() bool {
	return e.config.RateLimit.TrustForwardedFor
}

// AuditDropped reports how many audit events were shed under load.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of every counter.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// auditEvent stamps shared fields and hands the event to the dispatcher.
func (e *Engine) auditEvent(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	if event.IP == "" {
		event.IP = clientIPFromContext(ctx)
	}
	if event.Path == "" {
		event.Path = requestPathFromContext(ctx)
	}
	e.audit.Emit(ctx, event)
}

// userPath addresses one record inside the reserved users subtree.
func userPath(id string) string {
	return UsersPath + "/" + strings.Trim(id, "/")
}
