package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/auth"
)

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func withToken(r *http.Request, token string, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), TokenCtxKey, token)
	return r.WithContext(auth.ContextWithClaims(ctx, claims))
}

// JWTAuth rejects requests without a valid bearer token.
func JWTAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing or malformed authorization header")
				return
			}
			claims, err := tokens.Parse(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, withToken(r, token, claims))
		})
	}
}

// OptionalJWTAuth passes anonymous requests through but still rejects a
// present and invalid token.
func OptionalJWTAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			JWTAuth(tokens)(next).ServeHTTP(w, r)
		})
	}
}
