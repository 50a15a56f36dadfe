// Package middleware provides request-scoped logging, metrics, tracing, rate limiting
// and token helpers shared by the HTTP server and the admin client.
package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenIssuer is the iss claim written into admin tokens.
	TokenIssuer = "adminhub-api"
	// TokenAudience is the aud claim written into admin tokens.
	TokenAudience = "adminhub-admin"
)

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("authorization required")
	// ErrInvalidToken is returned for malformed, expired or foreign tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenClaims is the verified subset of an admin token.
type TokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// IssueToken signs an HS256 token for userID valid for ttl.
func IssueToken(secret string, userID uint, ttl time.Duration) (string, TokenClaims, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:    userID,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"jti": claims.JTI,
		"iat": now.Unix(),
		"exp": claims.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", TokenClaims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// ParseToken verifies tokenString and extracts its claims.
func ParseToken(secret, tokenString string) (TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return TokenClaims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return TokenClaims{}, ErrInvalidToken
	}

	out := TokenClaims{UserID: uint(userID)}
	if jti, ok := claims["jti"].(string); ok {
		out.JTI = jti
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// WebSocket upgrades may pass it as the token query parameter instead.
func BearerToken(c *fiber.Ctx, allowQuery bool) (string, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", ErrInvalidToken
		}
		return parts[1], nil
	}
	if allowQuery {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
	}
	return "", ErrMissingToken
}
