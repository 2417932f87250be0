package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sokocrafts/sokoni/internal/claims"
)

type principalContextKey struct{}

// WithPrincipal returns a context carrying the given request principal.
func WithPrincipal(ctx context.Context, p claims.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext retrieves the authenticated principal attached by
// Authenticate. ok is false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (claims.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(claims.Principal)
	return p, ok
}

// Authenticate is the inbound trust gate. It inspects the Authorization
// header of every request:
//
//   - no header, or a header without the Bearer scheme: the request
//     proceeds anonymous. Routes that need an identity reject it later.
//   - a bearer token that fails verification: the request is rejected
//     with 401 before any business logic runs.
//   - a valid bearer token: the derived principal is attached to the
//     request context for exactly the lifetime of that request.
//
// The gate never mutates persisted state.
func Authenticate(codec *claims.Codec, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := r.Header.Get("Authorization")

			if !strings.HasPrefix(authorization, "Bearer ") {
				// A missing or unrecognized scheme is not an error,
				// the request is simply anonymous.
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			claim, err := codec.Verify(token)
			if err != nil {
				logger.Warn("Rejected request with invalid bearer token",
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Your token is invalid or has expired",
				})
				return
			}

			principal := claims.Principal{
				SubjectID: claim.SubjectID,
				Role:      claim.Role,
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
