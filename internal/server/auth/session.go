// Package auth signs and verifies the session cookie token. The token only
// names a server-side session; it never authorizes a request on its own.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCodec turns a session into a cookie value and back.
type SessionCodec interface {
	Encode(s *models.Session) (string, error)
	Decode(token string) (sessionID string, err error)
}

// Claims carries the session id in jti and the account id in sub.
type Claims struct {
	jwt.RegisteredClaims
}

type JWTCodec struct {
	secret []byte
	now    func() time.Time
}

func NewJWTCodec(secret []byte) *JWTCodec {
	return &JWTCodec{secret: secret, now: time.Now}
}

func (c *JWTCodec) Encode(s *models.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.AccountID,
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	return token.SignedString(c.secret)
}

func (c *JWTCodec) Decode(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.ID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.ID, nil
}
