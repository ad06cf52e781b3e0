package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess = "access"
	tokenIssuer     = "recipehub"
)

type Claims struct {
	UserID    int64  `json:"uid"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenStrategy issues HS256 signed bearer tokens carrying the principal.
// Nothing is stored server side, so logging out is the client discarding
// its token.
type TokenStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenStrategy(secret string, ttl time.Duration) *TokenStrategy {
	return &TokenStrategy{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *TokenStrategy) WithClock(now func() time.Time) *TokenStrategy {
	s.now = now
	return s
}

func (s *TokenStrategy) Name() string { return "token" }

func (s *TokenStrategy) Sign(p Principal) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		UserID:    p.UserID,
		Username:  p.Username,
		Email:     p.Email,
		IsAdmin:   p.IsAdmin,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(p.UserID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return token, expiresAt, nil
}

// Verify checks signature first and claims second, so an expired token is
// only ever reported as expired when its signature is good.
func (s *TokenStrategy) Verify(raw string) (Principal, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		return Principal{}, classifyJWTError(err)
	}

	if claims.TokenType != tokenTypeAccess || claims.UserID <= 0 {
		return Principal{}, ErrMalformedCredential
	}

	return Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		IsAdmin:  claims.IsAdmin,
	}, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredCredential, err)
	default:
		// nbf/iat/issuer/required-claim failures
		return fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
}

func (s *TokenStrategy) Authenticate(r *http.Request) (Principal, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return Principal{}, err
	}

	return s.Verify(raw)
}

func (s *TokenStrategy) Issue(_ http.ResponseWriter, _ *http.Request, p Principal) (Issued, error) {
	token, expiresAt, err := s.Sign(p)
	if err != nil {
		return Issued{}, err
	}

	return Issued{Token: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// Revoke has no server state to clear. It reports whether the request still
// carried a valid token for the client to throw away.
func (s *TokenStrategy) Revoke(_ http.ResponseWriter, r *http.Request) (bool, error) {
	_, err := s.Authenticate(r)
	return err == nil, nil
}
