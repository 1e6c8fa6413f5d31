package security

import (
	"context"
	"errors"
	"time"

	"lexora/internal/domain/model"
	"lexora/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	TokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
)

func InitJWT() {
	Configure(config.AppConfig.JWTKey, config.AppConfig.JWTExp)
}

// Configure sets the HS256 signing key and the validity window of new tokens.
func Configure(key []byte, ttl time.Duration) {
	TokenAuth = jwtauth.New("HS256", key, nil)
	tokenTTL = ttl
}

// Identity is what a token asserts about its bearer. It is trusted until
// the token expires; no user lookup happens on verification.
type Identity struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// IdentityOf returns the identity a token for u would carry.
func IdentityOf(u *model.User) Identity {
	return Identity{ID: u.ID, Role: u.Role, Username: u.Username}
}

func GenerateToken(id Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  id.ID,
		"role":     id.Role,
		"username": id.Username,
		"jti":      uuid.NewString(),
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// IdentityFromClaims reads the identity claims written by GenerateToken.
func IdentityFromClaims(claims map[string]interface{}) (Identity, error) {
	var id Identity
	var ok bool
	if id.ID, ok = claims["user_id"].(string); !ok || id.ID == "" {
		return Identity{}, errors.New("user_id claim is missing or not a string")
	}
	if id.Role, ok = claims["role"].(string); !ok {
		return Identity{}, errors.New("role claim is missing or not a string")
	}
	if id.Role != model.RoleUser && id.Role != model.RoleAdmin {
		return Identity{}, errors.New("role claim has an unknown value")
	}
	if id.Username, ok = claims["username"].(string); !ok {
		return Identity{}, errors.New("username claim is missing or not a string")
	}
	return id, nil
}

// ParseToken verifies signature and expiry of tokenString and returns its
// identity.
func ParseToken(tokenString string) (Identity, error) {
	token, err := jwtauth.VerifyToken(TokenAuth, tokenString)
	if err != nil {
		return Identity{}, err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return Identity{}, err
	}
	return IdentityFromClaims(claims)
}
