package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollment-api/internal/identity"
	"enrollment-api/internal/model"
)

type stubVerifier struct {
	info *identity.TokenInfo
	err  error
}

func (v *stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*identity.TokenInfo, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.info, nil
}

func authedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	m := NewAuthMiddleware(&stubVerifier{info: &identity.TokenInfo{}})
	handler := m.RequireAuth(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	m := NewAuthMiddleware(&stubVerifier{err: identity.ErrInvalidToken})
	handler := m.RequireAuth(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthStoresClaims(t *testing.T) {
	info := &identity.TokenInfo{UID: "uid-1", Email: "parent@example.com", Role: model.RoleParent}
	m := NewAuthMiddleware(&stubVerifier{info: info})

	var seen *identity.TokenInfo
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := TokenFromContext(r.Context())
		require.True(t, ok)
		seen = got
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("valid"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "uid-1", seen.UID)
	assert.Equal(t, model.RoleParent, seen.Role)
}

func TestRequireRolesEnforcesMembership(t *testing.T) {
	info := &identity.TokenInfo{UID: "uid-2", Role: model.RoleParent}
	m := NewAuthMiddleware(&stubVerifier{info: info})

	handler := m.RequireAuth(m.RequireRoles(model.RoleStaff, model.RoleAdmin)(okHandler()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("valid"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	info.Role = model.RoleStaff
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("valid"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesWithoutAuthContext(t *testing.T) {
	m := NewAuthMiddleware(&stubVerifier{})
	handler := m.RequireRoles(model.RoleAdmin)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
