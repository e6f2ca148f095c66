package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/middleware"
	"github.com/noah-isme/school-fees-api/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":   middleware.UserID(c),
			"role": middleware.UserRole(c),
		})
	})
	return app
}

func callWithToken(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedBindsUserAndRole(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "42",
		"role": "student",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	resp := callWithToken(t, protectedApp(), token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		ID   uint        `json:"id"`
		Role models.Role `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, uint(42), body.ID)
	require.Equal(t, models.RoleStudent, body.Role)
}

func TestJWTProtectedRejectsInvalidTokens(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	cases := map[string]string{
		"missing":      "",
		"wrong secret": signToken(t, jwt.MapClaims{"sub": "1", "role": "admin", "exp": future}, "other"),
		"expired":      signToken(t, jwt.MapClaims{"sub": "1", "role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret),
		"no expiry":    signToken(t, jwt.MapClaims{"sub": "1", "role": "admin"}, testSecret),
		"unknown role": signToken(t, jwt.MapClaims{"sub": "1", "role": "guest", "exp": future}, testSecret),
		"bad subject":  signToken(t, jwt.MapClaims{"sub": "abc", "role": "admin", "exp": future}, testSecret),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			resp := callWithToken(t, protectedApp(), token)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
