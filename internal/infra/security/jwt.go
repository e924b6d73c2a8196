package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionTokenService signs the cookie that ties a browser to its form session.
type SessionTokenService struct {
	secret     []byte
	expiration time.Duration
}

func NewSessionTokenService(secret string, expiration time.Duration) *SessionTokenService {
	return &SessionTokenService{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

func (s *SessionTokenService) Expiration() time.Duration {
	return s.expiration
}

func (s *SessionTokenService) GenerateToken(sessionID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken returns the session id carried by token.
func (s *SessionTokenService) ParseToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Join(ErrInvalidSessionToken, err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidSessionToken
	}
	return claims.Subject, nil
}
