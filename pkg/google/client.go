package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"google.golang.org/api/idtoken"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const (
	DefaultTokenInfoURL     = "https://www.googleapis.com/oauth2/v3/tokeninfo"
	DefaultUserInfoEndpoint = "https://www.googleapis.com/"
)

// TokenInfo is the tokeninfo response for an ID or access token.
// Profile claims are only present for ID tokens.
type TokenInfo struct {
	Sub       string      `json:"sub"`
	Aud       string      `json:"aud"`
	Azp       string      `json:"azp"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Picture   string      `json:"picture"`
	Exp       json.Number `json:"exp"`        // unix seconds
	ExpiresIn json.Number `json:"expires_in"` // seconds left, access tokens only
}

// ExpiresAt returns when the token stops being valid, or the zero time if
// tokeninfo did not say
func (t *TokenInfo) ExpiresAt(now time.Time) time.Time {
	if exp, err := t.Exp.Int64(); err == nil && exp > 0 {
		return time.Unix(exp, 0)
	}
	if left, err := t.ExpiresIn.Int64(); err == nil {
		return now.Add(time.Duration(left) * time.Second)
	}
	return time.Time{}
}

// Audience returns the client the token was issued to
func (t *TokenInfo) Audience() string {
	if t.Aud != "" {
		return t.Aud
	}
	return t.Azp
}

// UserInfo is the profile behind an access token
type UserInfo struct {
	Sub     string
	Name    string
	Picture string
	Email   string
	Gender  string
}

// Config configures the Google API client
type Config struct {
	TokenInfoURL     string
	UserInfoEndpoint string
	Timeout          time.Duration
}

// Client calls Google's token introspection and user profile endpoints
type Client struct {
	hc           *http.Client
	tokenInfoURL string
	userinfo     *oauth2api.Service
	idTokens     *idtoken.Validator
}

// NewClient creates a Google API client
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.TokenInfoURL == "" {
		cfg.TokenInfoURL = DefaultTokenInfoURL
	}
	if cfg.UserInfoEndpoint == "" {
		cfg.UserInfoEndpoint = DefaultUserInfoEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	hc := &http.Client{Timeout: cfg.Timeout}
	svc, err := oauth2api.NewService(ctx,
		option.WithHTTPClient(hc),
		option.WithEndpoint(cfg.UserInfoEndpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}

	// Fetches Google's signing certs for local ID token checks
	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}

	return &Client{
		hc:           hc,
		tokenInfoURL: cfg.TokenInfoURL,
		userinfo:     svc,
		idTokens:     validator,
	}, nil
}

// TokenInfo introspects a token. queryKey is "id_token" or "access_token".
func (c *Client) TokenInfo(ctx context.Context, queryKey, token string) (*TokenInfo, error) {
	u := c.tokenInfoURL + "?" + url.Values{queryKey: {token}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tokeninfo: HTTP %d: %s", resp.StatusCode, body)
	}

	var info TokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo: %w", err)
	}
	return &info, nil
}

// UserInfo fetches the profile of the user an access token belongs to
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	call := c.userinfo.Userinfo.Get().Context(ctx)
	call.Header().Set("Authorization", "Bearer "+accessToken)

	info, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	if info.Id == "" {
		return nil, fmt.Errorf("userinfo response has no user id")
	}

	return &UserInfo{
		Sub:     info.Id,
		Name:    info.Name,
		Picture: info.Picture,
		Email:   info.Email,
		Gender:  info.Gender,
	}, nil
}
