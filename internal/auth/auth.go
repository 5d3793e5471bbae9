// Package auth issues and verifies the JWT bearer tokens that guard
// the control-plane HTTP surface. There is a single configured admin
// credential, not a user table.
package auth

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const tokenTTL = 24 * time.Hour

// Claims is the JWT payload for the single admin identity.
type Claims struct {
	Subject string `json:"sub"`
	jwt.StandardClaims
}

// Issuer signs and verifies tokens for one configured secret.
type Issuer struct {
	secret []byte
}

// NewIssuer constructs an Issuer from the configured signing secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// GenerateJWT issues a token for subject, valid for tokenTTL.
func (i *Issuer) GenerateJWT(subject string) (string, error) {
	now := time.Now()
	claims := Claims{
		Subject: subject,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(tokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ParseAndVerify validates the token string and returns its claims.
func (i *Issuer) ParseAndVerify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
