package auth_test

import (
	"testing"
	"time"

	"go-hiring-pipeline/pkg/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func TestVerifierHS256(t *testing.T) {
	v := auth.NewVerifier(secret, nil, "https://auth.example.com")
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("valid token", func(t *testing.T) {
		identity, err := v.Verify(sign(t, secret, jwt.MapClaims{
			"sub":   "sub-1",
			"email": "rita@example.com",
			"iss":   "https://auth.example.com",
			"exp":   exp,
			"user_metadata": map[string]interface{}{
				"full_name": "Rita Recruiter",
			},
		}))

		require.NoError(t, err)
		assert.Equal(t, &auth.Identity{Subject: "sub-1", Email: "rita@example.com", Name: "Rita Recruiter"}, identity)
	})

	tests := []struct {
		name   string
		key    string
		claims jwt.MapClaims
	}{
		{"wrong secret", "other", jwt.MapClaims{"sub": "s", "iss": "https://auth.example.com", "exp": exp}},
		{"expired", secret, jwt.MapClaims{"sub": "s", "iss": "https://auth.example.com", "exp": time.Now().Add(-time.Minute).Unix()}},
		{"wrong issuer", secret, jwt.MapClaims{"sub": "s", "iss": "https://evil.example.com", "exp": exp}},
		{"missing subject", secret, jwt.MapClaims{"iss": "https://auth.example.com", "exp": exp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(sign(t, tt.key, tt.claims))
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not-a-jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestVerifierWithoutSecret(t *testing.T) {
	v := auth.NewVerifier("", nil, "")
	_, err := v.Verify(sign(t, secret, jwt.MapClaims{"sub": "s"}))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
