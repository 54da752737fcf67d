package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/repository"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/services"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "Invalid request body")
}

// respondError maps service and gateway errors onto HTTP responses. Gateway
// messages are shown verbatim, as the screens would alert them.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validation *services.ValidationError
		partial    *services.PartialWriteError
		gwErr      *gateway.Error
	)

	switch {
	case errors.As(err, &validation):
		return fail(c, fiber.StatusBadRequest, validation.Message)
	case errors.As(err, &partial):
		slog.Error("partial write", "path", c.Path(), "error", partial.Err)
		return fail(c, fiber.StatusBadGateway, partial.Message)
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, fiber.StatusConflict, "This appointment was changed by another request; reload and try again")
	case errors.Is(err, services.ErrNotAllowed):
		return fail(c, fiber.StatusForbidden, "This appointment belongs to another account")
	case errors.Is(err, session.ErrStaleSession):
		return fail(c, fiber.StatusConflict, "Session changed; reload the current session")
	case errors.Is(err, session.ErrNotAuthenticated):
		return fail(c, fiber.StatusUnauthorized, "Unauthorized: not signed in")
	case errors.Is(err, session.ErrGatewayUnavailable):
		return fail(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, session.ErrInvalidRole):
		return fail(c, fiber.StatusBadRequest, "Role must be patient or doctor")
	case errors.Is(err, session.ErrNoProfile):
		return fail(c, fiber.StatusForbidden, "No profile exists for this account")
	case errors.Is(err, context.DeadlineExceeded):
		return fail(c, fiber.StatusGatewayTimeout, "The server took too long to respond")
	case errors.As(err, &gwErr):
		return fail(c, gatewayStatus(gwErr.Status), gwErr.Message)
	}

	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	capture(c, err)
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

// gatewayStatus passes client errors through and reports the rest as 502.
func gatewayStatus(status int) int {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusConflict, http.StatusUnprocessableEntity, http.StatusTooManyRequests:
		return status
	}
	return fiber.StatusBadGateway
}

func capture(c *fiber.Ctx, err error) {
	hub := sentryfiber.GetHubFromContext(c)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
