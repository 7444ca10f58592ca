// Package auth issues and verifies the signed access tokens that carry a
// caller's identity and role.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/models"
)

const invalidTokenMessage = "Invalid token"

var ErrEmptySecret = errors.New("jwt secret must not be empty")

// Claims is the token payload. The subject holds the user id.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the verified caller attached to a request.
type Principal struct {
	UserID string
	Role   models.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

type TokenManager struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewTokenManager(secret string, expiresIn time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if expiresIn <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", expiresIn)
	}
	return &TokenManager{secret: []byte(secret), expiresIn: expiresIn, now: time.Now}, nil
}

// Issue signs a token for userID with HS256.
func (m *TokenManager) Issue(userID string, role models.Role) (string, error) {
	now := m.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the principal.
// Every failure is an Unauthenticated error.
func (m *TokenManager) Verify(tokenStr string) (Principal, error) {
	if tokenStr == "" {
		return Principal{}, apperror.Unauthenticated("Missing auth token")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Principal{}, &apperror.Error{
			Kind:    apperror.KindUnauthenticated,
			Message: invalidTokenMessage,
			Err:     err,
		}
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return Principal{}, apperror.Unauthenticated(invalidTokenMessage)
	}
	return Principal{UserID: claims.Subject, Role: claims.Role}, nil
}
