package middleware

import "context"

// ContextKey is a private type for request context keys.
type ContextKey string

// TokenCtxKey holds the raw bearer token of an authenticated request.
const TokenCtxKey = ContextKey("token")

// TokenFromContext returns the bearer token stored by JWTAuth, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(TokenCtxKey).(string)
	return token
}
