// Package rate implements the continuous-refill token bucket that backs the
// admission gate.
//
// # Bucket semantics
//
// Each key owns one bucket holding a fractional token count. On every Allow
// call the bucket is refilled by elapsed * rate / per, clamped to rate, then
// one whole token is consumed when at least 1.0 is available. A key seen for
// the first time starts with a full bucket. Tokens never go negative and
// never exceed rate.
//
// # Backends
//
//   - [Memory] — per-process map guarded by a single mutex. Buckets are
//     retained for the process lifetime unless IdleTTL is set.
//   - [Redis] — the same bucket state kept in a Redis hash, refill and
//     consume executed atomically by an embedded Lua script.
//
// # What this package must NOT do
//
//   - Decide how request keys are derived (the middleware owns that).
//   - Render rejection responses or emit audit events.
package rate
