package service

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustlens/internal/models"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	s := &authService{logger: zap.NewNop()}

	hash, err := s.hashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, s.verifyPassword(hash, "correct horse battery staple"))
	assert.False(t, s.verifyPassword(hash, "wrong password"))
	assert.False(t, s.verifyPassword("not a valid hash", "anything"))
}

func TestHashesAreSalted(t *testing.T) {
	s := &authService{logger: zap.NewNop()}

	a, err := s.hashPassword("same password")
	require.NoError(t, err)
	b, err := s.hashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "each hash must use a fresh salt")
}

func TestTokenClaims(t *testing.T) {
	claims := &models.Claims{Username: "reviewer", Role: "user"}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(GetJWTSecret())
	require.NoError(t, err)

	parsed := &models.Claims{}
	_, err = jwt.ParseWithClaims(signed, parsed, func(t *jwt.Token) (interface{}, error) {
		return GetJWTSecret(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "reviewer", parsed.Username)
	assert.Equal(t, "user", parsed.Role)
}
