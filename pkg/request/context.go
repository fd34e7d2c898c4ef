package request

import "context"

// IDHeader carries the request id across the console and the backend.
const IDHeader = "X-Request-ID"

type idKey struct{}

// WithID stores a request id in ctx.
func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, idKey{}, id)
}

// IDFromContext returns the request id stored in ctx, or "".
func IDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(idKey{}).(string)
	return id
}
