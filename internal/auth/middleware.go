package auth

import (
	"fmt"
	"strings"

	"github.com/tech-arch1tect/loggate/internal/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Middleware extracts an authenticated principal from a Bearer JWT (HMAC,
// shared secret) and attaches it to the request context for the logging
// layer's lazy identity accessors. This is identity enrichment, not access
// control: requests with a missing or invalid token proceed as anonymous.
func Middleware(secret string, logger *logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}

			token := ExtractBearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				return next(c)
			}

			principal, err := ParseToken(token, secret)
			if err != nil {
				logger.Debug("Could not parse bearer token, continuing as anonymous",
					zap.Error(err))
				return next(c)
			}

			ctx := WithPrincipal(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// ParseToken verifies an HMAC-signed JWT and exposes its claims as a
// Principal.
func ParseToken(tokenString, secret string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}

	return &Principal{Claims: map[string]any(claims)}, nil
}

func ExtractBearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}
