// Package rtdb is the client for the remote tree-structured JSON store.
// Entries are addressed by slash-separated paths rooted at the store's top
// level and exchanged over its REST surface.
//
// # Connection lifecycle
//
// Construct one [Client] at startup and share it; construction performs no
// I/O. The first operation initializes the connection — loads the service
// account material, signs an RS256 assertion, and exchanges it for an
// access token — under an internal guard so concurrent first use runs the
// sequence exactly once. A failed attempt leaves the client uninitialized;
// the next operation retries from scratch.
//
// # Error shape
//
// Read swallows transport failures and returns nil, so callers cannot tell
// an empty path from an unreachable backend; Write, Update, and Delete
// report plain booleans. [Client.ReadCheck] is the out-of-band escape hatch
// for callers that must tell the two apart.
//
// # What this package must NOT do
//
//   - Interpret the values it moves (user records are the engine's concern).
//   - Enforce uniqueness or referential integrity; the store has no rules.
package rtdb
