package helpers

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload for wallet-session tokens. Not used by
// the event endpoints themselves; the trading services share the same
// SECRET_KEY and mint tokens through here.
type Claims struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func secretKey() ([]byte, error) {
	key := os.Getenv("SECRET_KEY")
	if key == "" {
		return nil, errors.New("SECRET_KEY not set")
	}
	return []byte(key), nil
}

// ConstructToken signs the claims with HS512.
func ConstructToken(claims Claims) (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, nil
}

// DeconstructToken verifies the signature and returns the claims.
func DeconstructToken(tokenStr string) (*Claims, error) {
	key, err := secretKey()
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// GenTimes returns issued-at and expiration timestamps in unix seconds.
func GenTimes(expirationSeconds int64) (int64, int64) {
	now := time.Now().UnixNano() / 1_000_000_000
	return now, now + expirationSeconds
}
