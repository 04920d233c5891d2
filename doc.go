// Package firegate is the admission and identity gate that fronts a remote
// tree-structured JSON store. It bundles a token-bucket rate limiter, a
// signed bearer-credential lifecycle, role-gated authorization, and the
// resilient store client that mediates every read and write.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Request pipeline
//
// An inbound request first passes the admission gate (token bucket keyed
// by client address), then the identity gate (public allow-list bypass,
// else bearer verification and identity resolution), and finally the
// handler, which may additionally require the admin role and reaches the
// store only through the shared client.
//
// # Architecture boundaries
//
// firegate is the public surface. It exposes [Engine], [Builder], [Config],
// and value types. Bucket arithmetic lives under internal/rate; credential
// signing under jwt; password hashing under password; the store transport
// under rtdb; HTTP adapters under middleware.
//
// # What this package must NOT do
//
//   - Serve routes or marshal request bodies (the caller's HTTP shell owns
//     that; middleware only wraps it).
//   - Cache resolved identities across requests.
//   - Raise store transport errors to handlers: reads come back empty and
//     writes come back false.
package firegate
