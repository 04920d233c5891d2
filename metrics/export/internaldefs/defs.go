package internaldefs

import (
	firegate "github.com/firegate/firegate"
)

// CounterDef binds one engine counter to its exported name and help text.
type CounterDef struct {
	ID   firegate.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: firegate.MetricAdmissionAllowed, Name: "firegate_admission_allowed_total", Help: "Requests admitted by the rate limiter."},
	{ID: firegate.MetricAdmissionDenied, Name: "firegate_admission_denied_total", Help: "Requests denied by the rate limiter."},
	{ID: firegate.MetricPublicBypass, Name: "firegate_public_bypass_total", Help: "Requests that skipped credential checks via the public allow-list."},
	{ID: firegate.MetricAuthSuccess, Name: "firegate_auth_success_total", Help: "Credentials resolved to a live identity."},
	{ID: firegate.MetricAuthRejected, Name: "firegate_auth_rejected_total", Help: "Credentials rejected during resolution."},
	{ID: firegate.MetricForbidden, Name: "firegate_forbidden_total", Help: "Authenticated requests denied administrative access."},
	{ID: firegate.MetricLoginSuccess, Name: "firegate_login_success_total", Help: "Successful login attempts."},
	{ID: firegate.MetricLoginFailure, Name: "firegate_login_failure_total", Help: "Failed login attempts."},
	{ID: firegate.MetricTokenIssued, Name: "firegate_token_issued_total", Help: "Signed credentials handed out."},
	{ID: firegate.MetricUserCreated, Name: "firegate_user_created_total", Help: "User records created."},
	{ID: firegate.MetricUserDuplicate, Name: "firegate_user_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: firegate.MetricAdminSeeded, Name: "firegate_admin_seeded_total", Help: "Admin seeding passes completed."},
}
