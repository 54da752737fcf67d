package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/navigation"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

const snapshotKey = "session"

// SessionProtected verifies the local API token and pins the request to the
// store generation it was issued for. A token from an earlier session gets
// 409 so the caller refetches /api/session instead of retrying.
func SessionProtected(store *session.Store, issuer *session.TokenIssuer) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Alg(), Key: issuer.Secret()},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			gen, err := generationClaim(c)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: true, Message: "Unauthorized: " + err.Error(),
				})
			}

			snap, err := store.Check(gen)
			switch {
			case errors.Is(err, session.ErrStaleSession):
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
					Error: true, Message: "Session changed; reload the current session",
				})
			case err != nil:
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: true, Message: "Unauthorized: not signed in",
				})
			}

			c.Locals(snapshotKey, snap)
			return c.Next()
		},
	})
}

// RequireScreen rejects requests whose role cannot reach screen.
func RequireScreen(screen navigation.Screen) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, ok := Snapshot(c)
		if !ok || !navigation.Allows(snap, screen) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "This screen is not available for your role",
			})
		}
		return c.Next()
	}
}

// Snapshot returns the session snapshot SessionProtected stored on c.
func Snapshot(c *fiber.Ctx) (session.Snapshot, bool) {
	snap, ok := c.Locals(snapshotKey).(session.Snapshot)
	return snap, ok
}

func generationClaim(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	gen, ok := claims[session.GenerationClaim].(string)
	if !ok || gen == "" {
		return "", errors.New("missing session generation")
	}
	return gen, nil
}
