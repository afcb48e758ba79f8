package authUtils

import (
	"errors"
	"fmt"
	"time"

	"publicseva-be/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is fixed; there is no refresh flow.
const TokenTTL = 24 * time.Hour

// Claims is the signed token payload.
type Claims struct {
	ID       string      `json:"id"`
	Role     models.Role `json:"role"`
	District string      `json:"district"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

func NewTokenManager(secret string) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is not set")
	}
	return &TokenManager{secret: []byte(secret), now: time.Now}, nil
}

// GenerateToken signs a token for the given identity and returns it with its expiry.
func (m *TokenManager) GenerateToken(identity models.Identity) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(TokenTTL)

	claims := Claims{
		ID:       identity.UserID,
		Role:     identity.Role,
		District: identity.District,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken verifies signature and expiry and returns the identity it carries.
func (m *TokenManager) ParseToken(tokenString string) (models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.now))
	if err != nil {
		return models.Identity{}, err
	}
	if !token.Valid {
		return models.Identity{}, errors.New("invalid token")
	}
	if claims.ID == "" || !claims.Role.Valid() {
		return models.Identity{}, errors.New("invalid token claims")
	}

	return models.Identity{UserID: claims.ID, Role: claims.Role, District: claims.District}, nil
}
