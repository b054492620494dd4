package identity

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier validates HS256 tokens locally instead of round-tripping to
// the identity service. Useful for deployments that share a signing secret
// with the provider.
type JWTVerifier struct {
	Secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{Secret: []byte(secret)}
}

type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	_ = ctx
	if len(v.Secret) == 0 {
		return Identity{}, ErrUnavailable
	}

	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidCredentials
	}
	if claims.Subject == "" {
		return Identity{}, ErrInvalidCredentials
	}

	role := claims.Role
	if role == "" {
		role = "user"
	}
	return Identity{ID: claims.Subject, Email: claims.Email, Role: role}, nil
}
