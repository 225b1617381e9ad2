package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"certledger/internal/domain"
	"certledger/pkg/requestcontext"
)

// JWTValidator defines the interface for validating session tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	Identity string
	Role     domain.Role
	TokenID  string
}

// RevocationChecker reports whether a token id has been revoked (logout).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// GetIdentity retrieves the authenticated caller identity from the context.
func GetIdentity(ctx context.Context) string {
	return requestcontext.Identity(ctx)
}

// GetRole retrieves the authenticated caller role from the context. The
// second return is false when no authenticated role is present.
func GetRole(ctx context.Context) (domain.Role, bool) {
	name := requestcontext.Role(ctx)
	if name == "" {
		return 0, false
	}
	role, err := domain.ParseRole(name)
	if err != nil {
		return 0, false
	}
	return role, true
}

// RequireAuth validates the bearer token, rejects revoked tokens, and puts
// the caller identity, role, and token id into the request context.
func RequireAuth(validator JWTValidator, revocations RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				unauthorized(w, "invalid or expired token")
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(ctx, claims.TokenID)
				if err != nil {
					logger.ErrorContext(ctx, "revocation check failed",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					// Fail closed: an unverifiable token is not accepted.
					unauthorized(w, "invalid or expired token")
					return
				}
				if revoked {
					unauthorized(w, "token revoked")
					return
				}
			}

			ctx = requestcontext.WithIdentity(ctx, claims.Identity)
			ctx = requestcontext.WithRole(ctx, claims.Role.String())
			ctx = requestcontext.WithTokenID(ctx, claims.TokenID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the caller's role. It must run after
// RequireAuth on the same chain.
func RequireRole(role domain.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			got, ok := GetRole(ctx)
			if !ok || got != role {
				logger.WarnContext(ctx, "forbidden - insufficient role",
					"required", role.String(),
					"identity", GetIdentity(ctx),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthenticated","error_description":"` + description + `"}`))
}
