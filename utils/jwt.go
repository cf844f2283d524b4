package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/craftwl/whitelist-server/config"
)

type JWTClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

func secretKey() ([]byte, error) {
	key := []byte(config.Settings.Get(config.KeySecretKey))
	if len(key) == 0 {
		return nil, errors.New("SECRET_KEY is not set")
	}
	return key, nil
}

// GenerateToken signs a JWT for the user. The token table, not this payload,
// is authoritative for revocation; the ttl here only bounds a stolen token.
func GenerateToken(userID uint, ttl time.Duration) (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}

	claims := JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// VerifyToken checks the signature and expiry, returning the claims.
func VerifyToken(tokenStr string) (*JWTClaims, error) {
	key, err := secretKey()
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenStr, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
