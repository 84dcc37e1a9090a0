package services

import (
	"context"
	"fmt"
	"time"

	"quizhub/apperrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const invalidCredentials = "Could not validate credentials"

// TokenService issues and validates HMAC-signed bearer tokens carrying the
// subject user id and an absolute expiry.
type TokenService struct {
	secret      []byte
	method      jwt.SigningMethod
	ttl         time.Duration
	revocations RevocationStore
	now         func() time.Time
}

type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithRevocations enables per-user revocation checks.
func WithRevocations(store RevocationStore) TokenOption {
	return func(s *TokenService) { s.revocations = store }
}

func NewTokenService(secret, algorithm string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", algorithm)
	}
	s := &TokenService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for subject valid for ttl; a non-positive ttl uses the
// configured default.
func (s *TokenService) Issue(subject uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Validate returns the subject of token. Every failure, including an
// unreachable revocation store, is an Auth error.
func (s *TokenService) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.KindAuth, invalidCredentials, err)
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.KindAuth, invalidCredentials, err)
	}

	if s.revocations != nil {
		revokedBefore, err := s.revocations.RevokedBefore(ctx, subject)
		if err != nil {
			return uuid.Nil, apperrors.Wrap(apperrors.KindAuth, invalidCredentials, err)
		}
		if !revokedBefore.IsZero() && (claims.IssuedAt == nil || claims.IssuedAt.Time.Before(revokedBefore)) {
			return uuid.Nil, apperrors.Auth(invalidCredentials)
		}
	}
	return subject, nil
}

// RevokeAll rejects every token of userID issued before now.
func (s *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if s.revocations == nil {
		return nil
	}
	return s.revocations.RevokeBefore(ctx, userID, s.now())
}
