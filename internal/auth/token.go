// Package auth issues and validates bearer tokens and carries the
// authenticated identity through a request.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/duccv/medrecords-api/internal/apperror"
)

// TokenService signs and verifies HS256 bearer tokens with one shared secret.
// It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	secret   []byte
	validity time.Duration
	issuer   string
	now      func() time.Time
}

type TokenOption func(*TokenService)

// WithIssuer sets the iss claim of issued tokens.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) { s.issuer = issuer }
}

// WithClock replaces time.Now for issuing and validating.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret []byte, validity time.Duration, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret:   secret,
		validity: validity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validity is how long an issued token stays valid.
func (s *TokenService) Validity() time.Duration {
	return s.validity
}

// Issue returns a signed token for subject, valid from now for the
// configured validity.
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Validate checks signature and expiry and returns the token subject.
// An expired token yields apperror.ErrExpiredToken; every other failure,
// including a bad signature on an expired token, yields
// apperror.ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperror.ErrExpiredToken
		}
		return "", apperror.ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return "", apperror.ErrInvalidToken
	}

	return claims.Subject, nil
}

// ExtractSubject returns the subject of a token that passes Validate.
func (s *TokenService) ExtractSubject(tokenString string) (string, error) {
	return s.Validate(tokenString)
}
