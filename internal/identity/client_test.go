package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollment-api/internal/model"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		TokenSecret: "test-secret",
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient(ClientConfig{APIKey: "k", TokenSecret: "s"})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "http://localhost", TokenSecret: "s"})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "http://localhost", APIKey: "k"})
	assert.Error(t, err)
}

func TestMintAndVerifyCustomToken(t *testing.T) {
	client := newTestClient(t, "http://localhost")

	pair, err := client.MintCustomToken(context.Background(), "uid-123", model.RoleParent)
	require.NoError(t, err)
	require.NotEmpty(t, pair.IDToken)
	assert.Empty(t, pair.RefreshToken)

	info, err := client.VerifyIDToken(context.Background(), pair.IDToken)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", info.UID)
	assert.Equal(t, model.RoleParent, info.Role)
	assert.WithinDuration(t, time.Now().Add(customTokenTTL), info.ExpiresAt, time.Minute)
}

func TestVerifyIDTokenRejectsMissingRole(t *testing.T) {
	client := newTestClient(t, "http://localhost")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "uid-123",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = client.VerifyIDToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyIDTokenRejectsBadSignature(t *testing.T) {
	client := newTestClient(t, "http://localhost")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "uid-123",
		"role": "Parent",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	_, err = client.VerifyIDToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyIDTokenRejectsExpired(t *testing.T) {
	client := newTestClient(t, "http://localhost")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "uid-123",
		"role": "Parent",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = client.VerifyIDToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignInMapsProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    error
	}{
		{"email not found", "EMAIL_NOT_FOUND", ErrInvalidCredentials},
		{"invalid password", "INVALID_PASSWORD", ErrInvalidCredentials},
		{"invalid login credentials", "INVALID_LOGIN_CREDENTIALS", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"message":"` + tt.message + `"}}`))
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL)
			_, err := client.SignIn(context.Background(), "parent@example.com", "secret123")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateUserMapsEmailExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"EMAIL_EXISTS"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.CreateUser(context.Background(), CreateUserParams{
		Email:    "parent@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSignInReturnsTokenPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "accounts:signInWithPassword")
		_, _ = w.Write([]byte(`{"idToken":"id-tok","refreshToken":"refresh-tok","expiresIn":"3600"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	pair, err := client.SignIn(context.Background(), "parent@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "id-tok", pair.IDToken)
	assert.Equal(t, "refresh-tok", pair.RefreshToken)
	assert.Equal(t, time.Hour, pair.ExpiresIn)
}

func TestExchangeRefreshTokenReturnsNewPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/v1/token")
		_, _ = w.Write([]byte(`{"id_token":"new-id-tok","refresh_token":"new-refresh","expires_in":"3600"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	pair, err := client.ExchangeRefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-id-tok", pair.IDToken)
	assert.Equal(t, "new-refresh", pair.RefreshToken)
	assert.Equal(t, time.Hour, pair.ExpiresIn)
}

func TestExchangeRefreshTokenRejectsStaleToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ExchangeRefreshToken(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserParsesRoleClaim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users":[{"localId":"uid-1","email":"staff@example.com","emailVerified":true,"customAttributes":"{\"role\":\"Staff\"}"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	rec, err := client.GetUser(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Staff", rec.Role)
	assert.True(t, rec.EmailVerified)
}

func TestGetUserNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
