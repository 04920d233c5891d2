// Package middleware adapts a firegate Engine to net/http handler chains.
//
// The intended ordering is Admission outermost, then Identity, then
// RequireAdmin on administrative routes:
//
//	handler := middleware.Admission(engine)(
//		middleware.Identity(engine, nil)(
//			middleware.RequireAdmin(engine)(adminMux)))
//
// Admission answers 429 before any credential work happens. Identity
// answers a uniform 401 for every authentication failure and stores the
// resolved identity in the request context. RequireAdmin answers 403 for
// authenticated callers without administrative rights; it never answers
// 401 itself.
package middleware
