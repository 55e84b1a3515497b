package actorctx

import "context"

type ctxKey struct{}

// WithUserID records the authenticated user on a request context so code
// below the HTTP layer can attribute writes.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFrom(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(ctxKey{}).(int64)

	return v, ok && v > 0
}
