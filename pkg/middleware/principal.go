package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clownfish2023/web3fans/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// PrincipalKey is the context key for the caller's principal
	PrincipalKey ContextKey = "principal"
)

// Principal extracts the caller's principal from the X-Principal header.
// Principals are opaque identities; the service only ever compares them
// for equality. Wallet/signature verification belongs to the gateway in
// front of this service, so an empty header is rejected here rather than
// guessed at.
func Principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := strings.TrimSpace(r.Header.Get("X-Principal"))
		if principal == "" {
			response.Unauthorized(w, "X-Principal header required")
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPrincipal extracts the principal from the request context
func GetPrincipal(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(PrincipalKey).(string)
	return principal, ok
}
