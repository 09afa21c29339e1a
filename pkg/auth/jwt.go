package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashiranjanraj/furnivision/config"
)

// TokenTTL is how long an access token stays valid.
const TokenTTL = 24 * time.Hour

// Claims holds the typed JWT payload.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the principal described by the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.UserID, Role: c.Role, Name: c.Name, Email: c.Email, Login: c.ID}
}

func secret() []byte {
	return []byte(config.JWTSecret())
}

// ErrNoLogin is returned when a token is requested for an identity that
// did not go through StartLogin.
var ErrNoLogin = errors.New("auth: identity has no login")

// GenerateToken signs a JWT for id. The token's jti is id.Login, so the
// token dies with the login.
func GenerateToken(id Identity) (string, error) {
	if id.Login == "" {
		return "", ErrNoLogin
	}
	now := time.Now()
	claims := Claims{
		UserID: id.ID,
		Role:   id.Role,
		Name:   id.Name,
		Email:  id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.Login,
			Subject:   id.ID,
			Issuer:    "furnivision",
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ValidateToken parses and validates a JWT string.
func ValidateToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
