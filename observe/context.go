package observe

import "context"

type invocationIDKey struct{}

// ContextWithInvocationID attaches a per-request invocation id that loggers
// add to every entry written with the returned context.
func ContextWithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey{}, id)
}

// InvocationID returns the invocation id stored in ctx, or "".
func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationIDKey{}).(string)
	return id
}
