package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/utils"
)

const (
	localUserID   = "user_id"
	localUserRole = "user_role"
)

// JWTProtected returns a middleware that validates HS256 bearer tokens and binds the caller to the request.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID, err := subjectUserID(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		role := models.ParseRole(fmt.Sprint(claims["role"]))
		if role == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token role")
		}

		c.Locals(localUserID, userID)
		c.Locals(localUserRole, role)

		return c.Next()
	}
}

func subjectUserID(claims jwt.MapClaims) (uint, error) {
	subject, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}
	parsed, err := strconv.ParseUint(strings.TrimSpace(subject), 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid subject %q", subject)
	}
	return uint(parsed), nil
}

// UserID returns the authenticated user id, or zero for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(localUserID).(uint); ok {
		return id
	}
	return 0
}

// UserRole returns the authenticated role, or an empty role for anonymous requests.
func UserRole(c *fiber.Ctx) models.Role {
	switch v := c.Locals(localUserRole).(type) {
	case models.Role:
		return v
	case string:
		return models.ParseRole(v)
	default:
		return ""
	}
}
