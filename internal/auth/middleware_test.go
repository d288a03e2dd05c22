package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tech-arch1tect/loggate/internal/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func serve(t *testing.T, secret, authHeader string) (*Principal, *httptest.ResponseRecorder) {
	t.Helper()

	core, _ := observer.New(zap.DebugLevel)
	logger := logging.NewWithZap(zap.New(core))

	var principal *Principal
	e := echo.New()
	e.Use(Middleware(secret, logger))
	e.GET("/", func(c echo.Context) error {
		principal = PrincipalFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return principal, rec
}

func TestMiddlewareAttachesPrincipal(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"id": 42, "email": "user@example.com"})

	principal, rec := serve(t, testSecret, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, principal)
	// JSON numbers decode as float64
	assert.Equal(t, float64(42), principal.Field("id"))
	assert.Equal(t, "user@example.com", principal.Field("email"))
	assert.Nil(t, principal.Field("missing"))
}

func TestMiddlewareInvalidTokenIsAnonymous(t *testing.T) {
	token := signToken(t, "some-other-secret", jwt.MapClaims{"id": 42})

	principal, rec := serve(t, testSecret, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code, "identity enrichment must not reject requests")
	assert.Nil(t, principal)
}

func TestMiddlewareMissingTokenIsAnonymous(t *testing.T) {
	principal, rec := serve(t, testSecret, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, principal)
}

func TestMiddlewareDisabledWithoutSecret(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"id": 42})

	principal, rec := serve(t, "", "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, principal)
}

func TestPrincipalNilSafety(t *testing.T) {
	var p *Principal
	assert.Nil(t, p.Field("id"))
	assert.Nil(t, PrincipalFromContext(nil))
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearerToken("bearer abc"))
	assert.Equal(t, "", ExtractBearerToken("Basic abc"))
	assert.Equal(t, "", ExtractBearerToken(""))
}
