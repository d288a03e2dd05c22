// Package account ships reference endpoints that exercise the logging
// pipeline end to end: a credentialed login body on the way in, an
// identity-bearing response on the way out.
package account

import (
	"net/http"
	"time"

	"github.com/tech-arch1tect/loggate/config"
	"github.com/tech-arch1tect/loggate/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	cfg *config.Config
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login issues an HMAC-signed token for the submitted username. There is no
// credential store behind it; the endpoint exists so the service sees a
// password in a request body and a token in a response body, both of which
// must come out masked in the logs.
func (h *Handler) Login(c echo.Context) error {
	if h.cfg.JWTSecret == "" {
		return echo.NewHTTPError(http.StatusNotImplemented, "no signing secret configured")
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	claims := jwt.MapClaims{
		"id":    req.Username,
		"email": req.Username,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not sign token")
	}

	return c.JSON(http.StatusOK, map[string]any{"token": token})
}

// Profile echoes the authenticated principal's claims.
func (h *Handler) Profile(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, p.Claims)
}
