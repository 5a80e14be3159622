// File: internal/service/authentication.go
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"rtm-portal/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// JWTSecretEnv names the environment variable holding the HS256 signing key.
const JWTSecretEnv = "AUTH_JWT_SECRET"

var (
	ErrInvalidPassword = errors.New("invalid password")

	timeNow         = time.Now
	parseWithClaims = jwt.ParseWithClaims
)

// CustomClaims is the JWT payload.
type CustomClaims struct {
	UserID  int    `json:"uid"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// AuthenticateUser checks password against the stored hash.
func AuthenticateUser(ctx context.Context, user model.User, password string) error {
	if user.PasswordHash == "" {
		return ErrInvalidPassword
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

func jwtSecret() ([]byte, error) {
	secret := os.Getenv(JWTSecretEnv)
	if secret == "" {
		return nil, fmt.Errorf("%s not set", JWTSecretEnv)
	}
	return []byte(secret), nil
}

// IssueAccessToken signs an access token for user valid for ttl.
func IssueAccessToken(user model.User, ttl time.Duration) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}

	now := timeNow()
	claims := CustomClaims{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyAccessToken validates tokenString and returns its claims.
func VerifyAccessToken(tokenString string) (*CustomClaims, error) {
	secret, err := jwtSecret()
	if err != nil {
		return nil, err
	}

	token, err := parseWithClaims(tokenString, &CustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
