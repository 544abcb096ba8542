package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSubject is returned for a valid token that names no actor.
var ErrMissingSubject = errors.New("token has no subject")

// GenerateJWT signs an HS256 token naming actor as its subject, valid from now for expiry.
func GenerateJWT(actor, secret, issuer string, expiry time.Duration, now time.Time) (string, error) {
	if actor == "" {
		return "", ErrMissingSubject
	}
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   actor,
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT checks the signature, expiry and, when issuer is set, the issuer of a token.
// It returns the registered claims of a valid token that carries a subject.
func ParseAndValidateJWT(tokenString, secret, issuer string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// GenerateSigningSecret returns a hex encoded random secret of n bytes, used when no JWT secret
// is configured outside production.
func GenerateSigningSecret(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("secret length must be positive")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
