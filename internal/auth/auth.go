/*
Package auth verifies the bearer tokens issued by the identity provider and
exposes the caller's id to handlers. Sign-up and login flows live outside
this service.
*/
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"Lumi_V0.1/internal/utility"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	AccessTokenDuration = 15 * time.Minute
	Issuer              = "lumi"

	// accessTokenCookie is read when no Authorization header is sent.
	accessTokenCookie = "access-token"
	// tokenQueryParam lets browser websocket clients, which cannot set
	// headers, pass the token in the URL.
	tokenQueryParam = "token"
)

var errMissingToken = errors.New("missing bearer token")

type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// NewAccessToken signs an HS256 token for userID valid for ttl.
func NewAccessToken(secret []byte, userID, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JwtCustomClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccessToken validates tokenString and returns its claims.
func ParseAccessToken(secret []byte, tokenString string) (*JwtCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, errors.New("token has no user_id")
	}
	return claims, nil
}

// JwtAuthMiddleware rejects requests without a valid token and stores the
// caller's id under utility.UserIDKey.
func JwtAuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := tokenFromRequest(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing token"})
			}

			claims, err := ParseAccessToken(secret, tokenString)
			if err != nil {
				log.Ctx(c.Request().Context()).Warn().
					Err(err).
					Str("ip", utility.GetRealIP(c)).
					Msg("Token validation failed")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			}

			c.Set(utility.UserIDKey, claims.UserID)

			// Carry the user id on every log line of this request.
			ctx := c.Request().Context()
			logger := log.Ctx(ctx).With().Str("user_id", claims.UserID).Logger()
			c.SetRequest(c.Request().WithContext(logger.WithContext(ctx)))

			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) (string, error) {
	// Try to get token from Authorization header first (mobile)
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), nil
	}
	// Try to get from cookie (web)
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	if t := c.QueryParam(tokenQueryParam); t != "" {
		return t, nil
	}
	return "", errMissingToken
}
