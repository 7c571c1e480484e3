package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/squid-app/squid-api/internal/model"
	"github.com/squid-app/squid-api/pkg/auth"
	"github.com/squid-app/squid-api/pkg/google"
)

// GoogleProvider is the subset of the Google API used to verify tokens
type GoogleProvider interface {
	TokenInfo(ctx context.Context, queryKey, token string) (*google.TokenInfo, error)
	UserInfo(ctx context.Context, accessToken string) (*google.UserInfo, error)
}

// IdentityCache stores identities of recently verified tokens
type IdentityCache interface {
	Get(ctx context.Context, token auth.Token) (*model.Identity, error)
	Set(ctx context.Context, token auth.Token, identity *model.Identity, expiresAt time.Time) error
}

// AuthService resolves Authorization headers to caller identities
type AuthService struct {
	google    GoogleProvider
	clientIDs []string
	cache     IdentityCache
}

// NewAuthService creates an AuthService. clientIDs is the audience allow-list;
// cache may be nil, in which case every request is verified with Google.
func NewAuthService(provider GoogleProvider, clientIDs []string, cache IdentityCache) *AuthService {
	return &AuthService{
		google:    provider,
		clientIDs: clientIDs,
		cache:     cache,
	}
}

// Authenticate verifies the Google token carried by an Authorization header
func (s *AuthService) Authenticate(ctx context.Context, header string) (*model.Identity, error) {
	token, err := auth.ParseHeader(header)
	if errors.Is(err, auth.ErrMissingHeader) {
		log.Warn("AuthZ failed. No token was found")
		return nil, model.NewAppError(model.ErrorCodeAuthorization, model.MsgMissingAuthHeader)
	}
	if err != nil {
		log.Warn("AuthZ failed. Token could not be parsed")
		return nil, model.NewAppError(model.ErrorCodeAuthorization, model.MsgUnparsableAuthHeader)
	}

	if len(s.clientIDs) == 0 {
		return nil, model.NewAppError(model.ErrorCodeServiceConfig, model.MsgMissingClientIDs)
	}

	logger := log.WithField("token_type", token.Type.String())

	if s.cache != nil {
		identity, err := s.cache.Get(ctx, token)
		if err != nil {
			logger.WithError(err).Warn("Identity cache lookup failed")
		} else if identity != nil {
			return identity, nil
		}
	}

	var (
		identity  *model.Identity
		expiresAt time.Time
	)
	switch token.Type {
	case auth.TokenTypeID:
		identity, expiresAt, err = s.verifyIDToken(ctx, token.Value)
	case auth.TokenTypeAccess:
		identity, expiresAt, err = s.verifyAccessToken(ctx, token.Value)
	default:
		err = model.NewAppError(model.ErrorCodeAuthorization, model.MsgUnparsableAuthHeader)
	}
	if err != nil {
		logger.WithError(err).Warn("AuthZ failed")
		return nil, err
	}

	logger.WithField("user_id", identity.ID).Debug("User is authZd")

	if s.cache != nil {
		if err := s.cache.Set(ctx, token, identity, expiresAt); err != nil {
			logger.WithError(err).Warn("Identity cache store failed")
		}
	}
	return identity, nil
}

// verifyIDToken needs a single call: ID tokens carry the full profile
func (s *AuthService) verifyIDToken(ctx context.Context, token string) (*model.Identity, time.Time, error) {
	info, err := s.google.TokenInfo(ctx, auth.TokenTypeID.QueryKey(), token)
	if err != nil {
		return nil, time.Time{}, model.WrapAppError(model.ErrorCodeAuthorization, model.MsgInvalidIDToken, err)
	}
	if err := s.checkAudience(info); err != nil {
		return nil, time.Time{}, model.WrapAppError(model.ErrorCodeAuthorization, model.MsgInvalidIDToken, err)
	}
	if info.Sub == "" {
		return nil, time.Time{}, model.WrapAppError(model.ErrorCodeAuthorization, model.MsgInvalidIDToken, errors.New("tokeninfo has no subject"))
	}

	identity := model.NewGoogleIdentity(info.Sub, info.Name, info.Picture, info.Email, "")
	return identity, info.ExpiresAt(time.Now()), nil
}

// verifyAccessToken needs a second call, tokeninfo for access tokens has no profile
func (s *AuthService) verifyAccessToken(ctx context.Context, token string) (*model.Identity, time.Time, error) {
	info, err := s.google.TokenInfo(ctx, auth.TokenTypeAccess.QueryKey(), token)
	if err != nil {
		return nil, time.Time{}, model.WrapAppError(model.ErrorCodeAuthorization, model.MsgInvalidAccessToken, err)
	}
	if err := s.checkAudience(info); err != nil {
		return nil, time.Time{}, model.WrapAppError(model.ErrorCodeAuthorization, model.MsgInvalidAccessToken, err)
	}

	user, err := s.google.UserInfo(ctx, token)
	if err != nil {
		return nil, time.Time{}, model.WrapAppError(model.ErrorCodeAuthorization, model.MsgInvalidAccessToken, err)
	}

	identity := model.NewGoogleIdentity(user.Sub, user.Name, user.Picture, user.Email, user.Gender)
	return identity, info.ExpiresAt(time.Now()), nil
}

func (s *AuthService) checkAudience(info *google.TokenInfo) error {
	aud := info.Audience()
	if !slices.Contains(s.clientIDs, aud) {
		return fmt.Errorf("audience %q is not an allowed client ID", aud)
	}
	return nil
}
