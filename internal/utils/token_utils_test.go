package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	now := time.Now()
	token, err := GenerateJWT("alice", "s3cret", "bookkeeper", time.Hour, now)
	require.NoError(t, err)

	claims, err := ParseAndValidateJWT(token, "s3cret", "bookkeeper")
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "bookkeeper", claims.Issuer)
}

func TestParseAndValidateJWT_Rejects(t *testing.T) {
	now := time.Now()
	valid, err := GenerateJWT("alice", "s3cret", "bookkeeper", time.Hour, now)
	require.NoError(t, err)
	expired, err := GenerateJWT("alice", "s3cret", "bookkeeper", time.Minute, now.Add(-time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		issuer  string
		wantErr error
	}{
		{"wrong secret", valid, "other", "bookkeeper", jwt.ErrTokenSignatureInvalid},
		{"wrong issuer", valid, "s3cret", "someone-else", jwt.ErrTokenInvalidIssuer},
		{"expired", expired, "s3cret", "bookkeeper", jwt.ErrTokenExpired},
		{"garbage", "not-a-token", "s3cret", "", jwt.ErrTokenMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAndValidateJWT(tt.token, tt.secret, tt.issuer)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestGenerateJWT_RequiresActor(t *testing.T) {
	_, err := GenerateJWT("", "s3cret", "", time.Hour, time.Now())
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestGenerateSigningSecret(t *testing.T) {
	a, err := GenerateSigningSecret(32)
	require.NoError(t, err)
	b, err := GenerateSigningSecret(32)
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)

	_, err = GenerateSigningSecret(0)
	assert.Error(t, err)
}
