package auth

import (
	"errors"
	"strings"
)

// TokenType is the kind of Google credential carried by a request
type TokenType int

const (
	// TokenTypeID is a Google ID token, sent by the Android app
	TokenTypeID TokenType = iota + 1
	// TokenTypeAccess is a Google OAuth access token, sent by the Chrome extension
	TokenTypeAccess
)

// Authorization header prefixes, matched literally
const (
	IDTokenPrefix     = "Bearer Google OAuth ID Token="
	AccessTokenPrefix = "Bearer Google OAuth Access Token="
)

var (
	ErrMissingHeader    = errors.New("authorization header is empty")
	ErrUnparsableHeader = errors.New("authorization header does not carry a Google token")
)

var tokenPrefixes = []struct {
	prefix    string
	tokenType TokenType
}{
	{AccessTokenPrefix, TokenTypeAccess},
	{IDTokenPrefix, TokenTypeID},
}

// QueryKey is the parameter name Google's token endpoints expect for this token type
func (t TokenType) QueryKey() string {
	switch t {
	case TokenTypeID:
		return "id_token"
	case TokenTypeAccess:
		return "access_token"
	default:
		return ""
	}
}

func (t TokenType) String() string {
	switch t {
	case TokenTypeID:
		return "ID token"
	case TokenTypeAccess:
		return "access token"
	default:
		return "unknown token"
	}
}

// Token is a raw Google credential and its type
type Token struct {
	Type  TokenType
	Value string
}

// ParseHeader extracts a Google token from an Authorization header value
func ParseHeader(header string) (Token, error) {
	if header == "" {
		return Token{}, ErrMissingHeader
	}

	for _, p := range tokenPrefixes {
		if value, ok := strings.CutPrefix(header, p.prefix); ok && value != "" {
			return Token{Type: p.tokenType, Value: value}, nil
		}
	}

	return Token{}, ErrUnparsableHeader
}
