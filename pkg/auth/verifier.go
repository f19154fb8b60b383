package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what a verified bearer token says about the caller.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier validates bearer tokens issued by the identity provider. HS256
// tokens are checked against the shared secret and RS256 tokens against the
// JWKS provider.
type Verifier struct {
	secret []byte
	jwks   *Provider
	issuer string
}

// NewVerifier accepts an empty secret or a nil provider to disable that
// algorithm family. An empty issuer skips the iss check.
func NewVerifier(secret string, jwks *Provider, issuer string) *Verifier {
	v := &Verifier{jwks: jwks, issuer: issuer}
	if secret != "" {
		v.secret = []byte(secret)
	}
	return v
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret == nil {
			return nil, fmt.Errorf("HS256 token received but AUTH_JWT_SECRET is not configured")
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.jwks == nil {
			return nil, fmt.Errorf("RS256 token received but AUTH_JWKS_URL is not configured")
		}
		return v.jwks.KeyFunc(token)
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "RS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenString, v.keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if name == "" {
		if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
			name, _ = meta["full_name"].(string)
		}
	}
	return &Identity{Subject: sub, Email: email, Name: name}, nil
}
