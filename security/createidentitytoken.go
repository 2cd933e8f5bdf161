package security

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const Issuer = "fieldtrack"

type Identity struct {
	UserID string
	Email  string
	Role   string
}

// IdentityClaims carries the caller's profile next to the standard claims.
// The subject is the user ID.
type IdentityClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func DecodeSecret(base64Secret string) ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("signing secret is not valid base64: %w", err)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("signing secret is empty")
	}
	return secret, nil
}

func CreateIdentityToken(identity *Identity, base64Secret string, expiresInSeconds int64) (string, error) {
	secretBytes, err := DecodeSecret(base64Secret)
	if err != nil {
		return "", err
	}
	if identity.UserID == "" {
		return "", fmt.Errorf("identity has no user id")
	}

	now := time.Now()
	claims := IdentityClaims{
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiresInSeconds) * time.Second)),
		},
	}

	// Use HS256 signing method (symmetric key)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secretBytes)
}

// ParseIdentityToken verifies an HS256 token and returns its claims.
func ParseIdentityToken(tokenStr string, secret []byte) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}
