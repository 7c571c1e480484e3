package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/squid-app/squid-api/internal/model"
	"github.com/squid-app/squid-api/pkg/auth"
	"github.com/squid-app/squid-api/pkg/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClientIDs = []string{"clientId1", "clientId2"}

type fakeGoogle struct {
	tokenInfo      map[string]*google.TokenInfo // keyed by queryKey + ":" + token
	userInfo       map[string]*google.UserInfo
	tokenInfoCalls int
	userInfoCalls  int
}

func newFakeGoogle() *fakeGoogle {
	return &fakeGoogle{
		tokenInfo: map[string]*google.TokenInfo{
			"id_token:GOOD ID TOKEN": {
				Sub: "1234", Aud: "clientId1", Name: "Jane", Picture: "jane.png", Email: "jane@example.com",
			},
			"id_token:FOREIGN ID TOKEN":         {Sub: "1234", Aud: "someone-else"},
			"access_token:GOOD ACCESS TOKEN":    {Aud: "clientId2"},
			"access_token:FOREIGN ACCESS TOKEN": {Aud: "someone-else"},
			"access_token:NO PROFILE TOKEN":     {Azp: "clientId1"},
		},
		userInfo: map[string]*google.UserInfo{
			"GOOD ACCESS TOKEN": {Sub: "5678", Name: "John", Picture: "john.png", Gender: "male"},
		},
	}
}

func (f *fakeGoogle) TokenInfo(ctx context.Context, queryKey, token string) (*google.TokenInfo, error) {
	f.tokenInfoCalls++
	if info, ok := f.tokenInfo[queryKey+":"+token]; ok {
		return info, nil
	}
	return nil, errors.New("tokeninfo: HTTP 400")
}

func (f *fakeGoogle) UserInfo(ctx context.Context, accessToken string) (*google.UserInfo, error) {
	f.userInfoCalls++
	if info, ok := f.userInfo[accessToken]; ok {
		return info, nil
	}
	return nil, errors.New("userinfo: HTTP 401")
}

type memoryCache struct {
	entries map[auth.Token]*model.Identity
	expiry  map[auth.Token]time.Time
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		entries: map[auth.Token]*model.Identity{},
		expiry:  map[auth.Token]time.Time{},
	}
}

func (m *memoryCache) Get(ctx context.Context, token auth.Token) (*model.Identity, error) {
	return m.entries[token], nil
}

func (m *memoryCache) Set(ctx context.Context, token auth.Token, identity *model.Identity, expiresAt time.Time) error {
	m.entries[token] = identity
	m.expiry[token] = expiresAt
	return nil
}

func requireAppError(t *testing.T, err error, code model.ErrorCode, message string) {
	t.Helper()
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

func TestAuthenticateIDToken(t *testing.T) {
	g := newFakeGoogle()
	s := NewAuthService(g, testClientIDs, nil)

	identity, err := s.Authenticate(context.Background(), "Bearer Google OAuth ID Token=GOOD ID TOKEN")
	require.NoError(t, err)
	assert.Equal(t, &model.Identity{
		ID:      "google-1234",
		Name:    "Jane",
		Picture: "jane.png",
		Email:   "jane@example.com",
	}, identity)
	assert.Equal(t, 1, g.tokenInfoCalls)
	assert.Equal(t, 0, g.userInfoCalls)
}

func TestAuthenticateAccessToken(t *testing.T) {
	g := newFakeGoogle()
	s := NewAuthService(g, testClientIDs, nil)

	identity, err := s.Authenticate(context.Background(), "Bearer Google OAuth Access Token=GOOD ACCESS TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "google-5678", identity.ID)
	assert.Equal(t, "male", identity.Gender)
	assert.Equal(t, 1, g.tokenInfoCalls)
	assert.Equal(t, 1, g.userInfoCalls)
}

func TestAuthenticateFailures(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		code    model.ErrorCode
		message string
	}{
		{"missing header", "", model.ErrorCodeAuthorization, model.MsgMissingAuthHeader},
		{"unparsable header", "BAD AUTH HEADER", model.ErrorCodeAuthorization, model.MsgUnparsableAuthHeader},
		{"bad id token", "Bearer Google OAuth ID Token=BAD ID TOKEN", model.ErrorCodeAuthorization, model.MsgInvalidIDToken},
		{"foreign id token", "Bearer Google OAuth ID Token=FOREIGN ID TOKEN", model.ErrorCodeAuthorization, model.MsgInvalidIDToken},
		{"bad access token", "Bearer Google OAuth Access Token=BAD ACCESS TOKEN", model.ErrorCodeAuthorization, model.MsgInvalidAccessToken},
		{"foreign access token", "Bearer Google OAuth Access Token=FOREIGN ACCESS TOKEN", model.ErrorCodeAuthorization, model.MsgInvalidAccessToken},
		{"userinfo fails", "Bearer Google OAuth Access Token=NO PROFILE TOKEN", model.ErrorCodeAuthorization, model.MsgInvalidAccessToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAuthService(newFakeGoogle(), testClientIDs, nil)
			identity, err := s.Authenticate(context.Background(), tt.header)
			assert.Nil(t, identity)
			requireAppError(t, err, tt.code, tt.message)
		})
	}
}

func TestAuthenticateForeignAccessTokenSkipsUserInfo(t *testing.T) {
	g := newFakeGoogle()
	s := NewAuthService(g, testClientIDs, nil)

	_, err := s.Authenticate(context.Background(), "Bearer Google OAuth Access Token=FOREIGN ACCESS TOKEN")
	require.Error(t, err)
	assert.Equal(t, 0, g.userInfoCalls)
}

func TestAuthenticateWithoutClientIDs(t *testing.T) {
	g := newFakeGoogle()
	s := NewAuthService(g, nil, nil)

	_, err := s.Authenticate(context.Background(), "Bearer Google OAuth ID Token=GOOD ID TOKEN")
	requireAppError(t, err, model.ErrorCodeServiceConfig, model.MsgMissingClientIDs)
	assert.Equal(t, 0, g.tokenInfoCalls)
}

func TestAuthenticateUsesCache(t *testing.T) {
	g := newFakeGoogle()
	cache := newMemoryCache()
	s := NewAuthService(g, testClientIDs, cache)

	header := "Bearer Google OAuth Access Token=GOOD ACCESS TOKEN"
	first, err := s.Authenticate(context.Background(), header)
	require.NoError(t, err)
	second, err := s.Authenticate(context.Background(), header)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, g.tokenInfoCalls)
	assert.Equal(t, 1, g.userInfoCalls)
}

func TestAuthenticateDoesNotCacheFailures(t *testing.T) {
	g := newFakeGoogle()
	cache := newMemoryCache()
	s := NewAuthService(g, testClientIDs, cache)

	_, err := s.Authenticate(context.Background(), "Bearer Google OAuth ID Token=BAD ID TOKEN")
	require.Error(t, err)
	assert.Empty(t, cache.entries)
}

func TestAuthenticatePassesTokenExpiryToCache(t *testing.T) {
	g := newFakeGoogle()
	g.tokenInfo["access_token:GOOD ACCESS TOKEN"].ExpiresIn = json.Number("30")
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	g.tokenInfo["id_token:GOOD ID TOKEN"].Exp = json.Number(strconv.FormatInt(exp.Unix(), 10))
	cache := newMemoryCache()
	s := NewAuthService(g, testClientIDs, cache)

	access := "Bearer Google OAuth Access Token=GOOD ACCESS TOKEN"
	_, err := s.Authenticate(context.Background(), access)
	require.NoError(t, err)
	accessToken := auth.Token{Type: auth.TokenTypeAccess, Value: "GOOD ACCESS TOKEN"}
	assert.WithinDuration(t, time.Now().Add(30*time.Second), cache.expiry[accessToken], 5*time.Second)

	_, err = s.Authenticate(context.Background(), "Bearer Google OAuth ID Token=GOOD ID TOKEN")
	require.NoError(t, err)
	idToken := auth.Token{Type: auth.TokenTypeID, Value: "GOOD ID TOKEN"}
	assert.True(t, exp.Equal(cache.expiry[idToken]))
}
