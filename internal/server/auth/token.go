// Package auth issues and verifies session tokens, decides which routes are
// public and turns an Authorization header into a caller identity.
package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/proposals/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// Key derivation modes for NewSigningKey.
const (
	KeyDerivationRaw  = "raw"
	KeyDerivationHKDF = "hkdf"
)

const hkdfInfo = "proposals/session-token/v1"

// NewSigningKey turns the configured secret into an HMAC key.
//
// "raw" (or empty) uses the secret bytes as they are. This keeps tokens
// compatible with older deployments but gives short secrets no stretching.
// "hkdf" derives a 32 byte key with HKDF-SHA256.
func NewSigningKey(secret, mode string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("secret key is empty")
	}

	switch mode {
	case "", KeyDerivationRaw:
		return []byte(secret), nil
	case KeyDerivationHKDF:
		key := make([]byte, 32)
		r := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, fmt.Errorf("derive key: %w", err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("unknown key derivation %q", mode)
	}
}

// TokenCodec signs and verifies HS256 session tokens whose subject is the
// user's email.
type TokenCodec struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customizes a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec returns a codec that signs with key and issues tokens valid for ttl.
func NewTokenCodec(key []byte, ttl time.Duration, opts ...TokenOption) (*TokenCodec, error) {
	if len(key) == 0 {
		return nil, errors.New("signing key is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	c := &TokenCodec{key: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// TTL reports how long issued tokens stay valid.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue returns a signed compact token for subject.
func (c *TokenCodec) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is empty")
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	})

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks token and returns its subject.
//
// The signature is checked before any claim is looked at, so a token whose
// header or payload was altered always yields common.ErrBadSignature.
// Structural problems yield common.ErrMalformedToken and a token past its
// expiry yields common.ErrTokenExpired.
func (c *TokenCodec) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", common.ErrMalformedToken
	}

	sig, err := c.parser.DecodeSegment(parts[2])
	if err != nil || len(sig) == 0 {
		return "", common.ErrMalformedToken
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, c.key); err != nil {
		return "", common.ErrBadSignature
	}

	claims := &jwt.RegisteredClaims{}
	_, err = c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", common.ErrTokenExpired
	default:
		return "", common.ErrMalformedToken
	}

	if claims.Subject == "" {
		return "", common.ErrMalformedToken
	}
	return claims.Subject, nil
}
