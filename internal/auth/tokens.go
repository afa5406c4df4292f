package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidAccessToken indicates the bearer token failed signature or
// expiry validation.
var ErrInvalidAccessToken = errors.New("invalid access token")

// Claims carries the authenticated actor identity inside access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"uid"`
	IsCelebrity bool   `json:"celebrity"`
}

// GenerateAccessToken signs an HS256 token identifying the user.
func GenerateAccessToken(userID string, isCelebrity bool, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:      userID,
		IsCelebrity: isCelebrity,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// ParseAccessToken validates the token and returns its claims.
func ParseAccessToken(tokenString string, secret []byte) (Claims, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidAccessToken
	}

	if claims.UserID == "" {
		return Claims{}, ErrInvalidAccessToken
	}

	return claims, nil
}
