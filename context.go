package firegate

import "context"

type clientIPContextKey struct{}

// WithClientIP attaches the caller's network address to ctx. The Engine
// stamps it into audit events; the middleware sets it from the rate-limit
// key so both gates agree on who the client is.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

type requestPathContextKey struct{}

// WithRequestPath attaches the request path to ctx so rejection and
// denial events record where they happened. The middleware sets it
// before any gate decision runs.
func WithRequestPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, requestPathContextKey{}, path)
}

func requestPathFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	path, _ := ctx.Value(requestPathContextKey{}).(string)
	return path
}
