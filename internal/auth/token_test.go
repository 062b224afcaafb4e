package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duccv/medrecords-api/internal/apperror"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newService(secret string, clock *fakeClock) *TokenService {
	return NewTokenService([]byte(secret), 5*time.Hour, WithIssuer("medrecords-api"), WithClock(clock.Now))
}

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newService("super-secret", clock)

	tok, err := svc.Issue("alice@example.com")
	require.NoError(t, err)
	assert.Len(t, strings.Split(tok, "."), 3)

	sub, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)

	sub, err = svc.ExtractSubject(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)
}

func TestValidateExpired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newService("super-secret", clock)

	tok, err := svc.Issue("alice@example.com")
	require.NoError(t, err)

	clock.t = clock.t.Add(5*time.Hour + time.Second)

	_, err = svc.Validate(tok)
	assert.ErrorIs(t, err, apperror.ErrExpiredToken)

	_, err = svc.ExtractSubject(tok)
	assert.ErrorIs(t, err, apperror.ErrExpiredToken)
}

func TestValidateWrongSecretBeatsExpiry(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	tok, err := newService("right-secret", clock).Issue("alice@example.com")
	require.NoError(t, err)

	other := newService("wrong-secret", clock)
	_, err = other.Validate(tok)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)

	// still invalid, not expired, once the token is also past its expiry
	clock.t = clock.t.Add(6 * time.Hour)
	_, err = other.Validate(tok)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestValidateMalformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("k"), time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "abc"} {
		_, err := svc.Validate(tok)
		assert.ErrorIs(t, err, apperror.ErrInvalidToken, tok)
	}
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	claims := jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenService(secret, time.Hour).Validate(tok)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestValidateRequiresExpiryAndSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	svc := NewTokenService(secret, time.Hour)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "a"}).SignedString(secret)
	require.NoError(t, err)
	_, err = svc.Validate(noExp)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = svc.Validate(noSub)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestValidateDoesNotLeakSecret(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("do-not-print-me"), time.Hour)
	_, err := svc.Validate("garbage")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "do-not-print-me")
}
