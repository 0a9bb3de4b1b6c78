package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"patientdocs/internal/auth"
	"patientdocs/internal/model"
)

// PrincipalLocalKey is where Authenticate stores the caller.
const PrincipalLocalKey = "principal"

// TokenVerifier turns a bearer token into the authenticated caller.
type TokenVerifier interface {
	Parse(token string) (model.Principal, error)
}

// Authenticate requires a valid "Authorization: Bearer <jwt>" header.
func Authenticate(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return WriteError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}

		p, err := v.Parse(strings.TrimSpace(token))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "token has expired"
			}
			return WriteError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", msg)
		}

		c.Locals(PrincipalLocalKey, p)
		return c.Next()
	}
}

// PrincipalFrom returns the caller stored by Authenticate.
func PrincipalFrom(c *fiber.Ctx) (model.Principal, bool) {
	p, ok := c.Locals(PrincipalLocalKey).(model.Principal)
	return p, ok && p != nil
}
