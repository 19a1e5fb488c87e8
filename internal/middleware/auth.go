package middleware

import (
	"context"
	"net/http"
	"strings"

	"enrollment-api/internal/identity"
	"enrollment-api/internal/model"
	"enrollment-api/pkg/apierror"
)

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*identity.TokenInfo, error)
}

type contextKey string

const tokenInfoContextKey contextKey = "token_info"

type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth verifies the bearer token and stores the decoded claims on
// the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeAPIError(w, apierror.Unauthorized("missing or invalid authorization header"))
			return
		}

		token := strings.TrimSpace(header[7:])
		info, err := m.verifier.VerifyIDToken(r.Context(), token)
		if err != nil {
			writeAPIError(w, apierror.Unauthorized("invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), tokenInfoContextKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows only the listed roles through. It must run after
// RequireAuth.
func (m *AuthMiddleware) RequireRoles(allowed ...model.Role) func(http.Handler) http.Handler {
	roleSet := map[model.Role]struct{}{}
	for _, role := range allowed {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, ok := TokenFromContext(r.Context())
			if !ok {
				writeAPIError(w, apierror.Unauthorized("authentication required"))
				return
			}

			if _, exists := roleSet[info.Role]; !exists {
				writeAPIError(w, apierror.Forbidden("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func TokenFromContext(ctx context.Context) (*identity.TokenInfo, bool) {
	info, ok := ctx.Value(tokenInfoContextKey).(*identity.TokenInfo)
	return info, ok
}
