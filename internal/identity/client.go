package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"enrollment-api/internal/model"
)

const (
	defaultTimeout  = 10 * time.Second
	customTokenTTL  = time.Hour
	roleClaimKey    = "role"
	defaultTokenTTL = time.Hour
)

// Client talks to an Identity-Toolkit-compatible REST API. Session tokens
// are HS256 JWTs verified locally with a secret shared with the identity
// service, so the hot auth path never makes a network round-trip.
type Client struct {
	baseURL    string
	tokenURL   string
	apiKey     string
	signingKey []byte
	httpClient *http.Client
}

type ClientConfig struct {
	BaseURL     string
	TokenURL    string
	APIKey      string
	TokenSecret string
	HTTPTimeout time.Duration
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("identity provider base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("identity provider API key is required")
	}
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		return nil, fmt.Errorf("identity token secret is required")
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1/token"
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tokenURL:   tokenURL,
		apiKey:     cfg.APIKey,
		signingKey: []byte(cfg.TokenSecret),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type accountPayload struct {
	LocalID           string `json:"localId,omitempty"`
	Email             string `json:"email,omitempty"`
	Password          string `json:"password,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
	EmailVerified     *bool  `json:"emailVerified,omitempty"`
	DisableUser       *bool  `json:"disableUser,omitempty"`
	CustomAttributes  string `json:"customAttributes,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken,omitempty"`
}

type accountRecord struct {
	LocalID          string `json:"localId"`
	Email            string `json:"email"`
	EmailVerified    bool   `json:"emailVerified"`
	DisplayName      string `json:"displayName"`
	PhoneNumber      string `json:"phoneNumber"`
	Disabled         bool   `json:"disabled"`
	CustomAttributes string `json:"customAttributes"`
}

func (c *Client) CreateUser(ctx context.Context, params CreateUserParams) (*UserRecord, error) {
	var out struct {
		LocalID string `json:"localId"`
	}
	verified := params.EmailVerified
	err := c.post(ctx, "accounts:signUp", accountPayload{
		Email:         params.Email,
		Password:      params.Password,
		DisplayName:   params.DisplayName,
		PhoneNumber:   params.PhoneNumber,
		EmailVerified: &verified,
	}, &out)
	if err != nil {
		return nil, err
	}

	return &UserRecord{
		UID:           out.LocalID,
		Email:         params.Email,
		EmailVerified: params.EmailVerified,
		DisplayName:   params.DisplayName,
		PhoneNumber:   params.PhoneNumber,
		Disabled:      params.Disabled,
	}, nil
}

func (c *Client) GetUser(ctx context.Context, uid string) (*UserRecord, error) {
	var out struct {
		Users []accountRecord `json:"users"`
	}
	err := c.post(ctx, "accounts:lookup", map[string]any{"localId": []string{uid}}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, ErrUserNotFound
	}
	return mapRecord(out.Users[0]), nil
}

func (c *Client) UpdateUser(ctx context.Context, uid string, params UpdateUserParams) error {
	payload := accountPayload{LocalID: uid}
	if params.Password != nil {
		payload.Password = *params.Password
	}
	payload.DisableUser = params.Disabled
	payload.EmailVerified = params.EmailVerified
	return c.post(ctx, "accounts:update", payload, nil)
}

func (c *Client) DeleteUser(ctx context.Context, uid string) error {
	return c.post(ctx, "accounts:delete", map[string]any{"localId": uid}, nil)
}

func (c *Client) SetRoleClaim(ctx context.Context, uid string, role model.Role) error {
	attrs, err := json.Marshal(map[string]string{roleClaimKey: role.String()})
	if err != nil {
		return err
	}
	return c.post(ctx, "accounts:update", accountPayload{
		LocalID:          uid,
		CustomAttributes: string(attrs),
	}, nil)
}

func (c *Client) SignIn(ctx context.Context, email string, password string) (*TokenPair, error) {
	var out struct {
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    string `json:"expiresIn"`
	}
	err := c.post(ctx, "accounts:signInWithPassword", accountPayload{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.IDToken == "" {
		return nil, ErrInvalidCredentials
	}
	return &TokenPair{
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    parseExpiry(out.ExpiresIn),
	}, nil
}

// MintCustomToken issues a short-lived session token directly, used for the
// post-registration login and for seed-account fixtures.
func (c *Client) MintCustomToken(ctx context.Context, uid string, role model.Role) (*TokenPair, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        uid,
		roleClaimKey: role.String(),
		"iat":        now.Unix(),
		"exp":        now.Add(customTokenTTL).Unix(),
	})

	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign custom token: %w", err)
	}

	return &TokenPair{IDToken: signed, RefreshToken: "", ExpiresIn: customTokenTTL}, nil
}

func (c *Client) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.tokenURL+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("refresh token exchange rejected", "status", resp.StatusCode)
		return nil, ErrInvalidToken
	}

	var out struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if out.IDToken == "" {
		return nil, ErrInvalidToken
	}

	return &TokenPair{
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    parseExpiry(out.ExpiresIn),
	}, nil
}

// VerifyIDToken validates the token signature and expiry and decodes its
// claims. A token without a recognizable role claim is rejected outright.
func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (*TokenInfo, error) {
	parsed, err := jwt.Parse(idToken, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	uid, _ := claims["sub"].(string)
	if uid == "" {
		return nil, ErrInvalidToken
	}

	rawRole, _ := claims[roleClaimKey].(string)
	role, err := model.ParseRole(rawRole)
	if err != nil {
		// Tokens without a valid role claim fail closed.
		return nil, ErrInvalidToken
	}

	info := &TokenInfo{UID: uid, Role: role}
	info.Email, _ = claims["email"].(string)
	info.EmailVerified, _ = claims["email_verified"].(bool)
	if iat, ok := claims["iat"].(float64); ok {
		info.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := claims["exp"].(float64); ok {
		info.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}

	return info, nil
}

func (c *Client) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return c.post(ctx, "accounts:update", map[string]any{
		"localId":    uid,
		"validSince": strconv.FormatInt(time.Now().UTC().Unix(), 10),
	}, nil)
}

func (c *Client) PasswordResetLink(ctx context.Context, email string) (string, error) {
	return c.oobLink(ctx, "PASSWORD_RESET", email)
}

func (c *Client) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	return c.oobLink(ctx, "VERIFY_EMAIL", email)
}

func (c *Client) oobLink(ctx context.Context, requestType string, email string) (string, error) {
	var out struct {
		OOBLink string `json:"oobLink"`
	}
	err := c.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType":   requestType,
		"email":         email,
		"returnOobLink": true,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.OOBLink, nil
}

func (c *Client) post(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/%s?key=%s", c.baseURL, action, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider call %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(action, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", action, err)
	}
	return nil
}

func (c *Client) mapError(action string, resp *http.Response) error {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &parsed)
	message := parsed.Error.Message

	switch {
	case strings.Contains(message, "EMAIL_EXISTS"):
		return ErrEmailExists
	case strings.Contains(message, "WEAK_PASSWORD"):
		return ErrWeakPassword
	case strings.Contains(message, "EMAIL_NOT_FOUND"),
		strings.Contains(message, "INVALID_PASSWORD"),
		strings.Contains(message, "INVALID_LOGIN_CREDENTIALS"):
		return ErrInvalidCredentials
	case strings.Contains(message, "USER_NOT_FOUND"):
		return ErrUserNotFound
	case strings.Contains(message, "INVALID_ID_TOKEN"),
		strings.Contains(message, "TOKEN_EXPIRED"):
		return ErrInvalidToken
	default:
		slog.Warn("identity provider error", "action", action, "status", resp.StatusCode, "message", message)
		return fmt.Errorf("identity provider %s failed: status %d", action, resp.StatusCode)
	}
}

func mapRecord(rec accountRecord) *UserRecord {
	out := &UserRecord{
		UID:           rec.LocalID,
		Email:         rec.Email,
		EmailVerified: rec.EmailVerified,
		DisplayName:   rec.DisplayName,
		PhoneNumber:   rec.PhoneNumber,
		Disabled:      rec.Disabled,
	}
	if rec.CustomAttributes != "" {
		var attrs map[string]string
		if err := json.Unmarshal([]byte(rec.CustomAttributes), &attrs); err == nil {
			out.Role = attrs[roleClaimKey]
		}
	}
	return out
}

func parseExpiry(raw string) time.Duration {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultTokenTTL
	}
	return time.Duration(seconds) * time.Second
}
