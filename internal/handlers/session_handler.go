package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/navigation"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/services"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

type SessionHandler struct {
	authService *services.AuthService
	store       *session.Store
}

func NewSessionHandler(authService *services.AuthService, store *session.Store) *SessionHandler {
	return &SessionHandler{authService: authService, store: store}
}

func (h *SessionHandler) Current(c *fiber.Ctx) error {
	signedIn, err := h.authService.Current()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessionResponse(signedIn))
}

// Navigation is the tab bar and pushable screens for the current session.
func (h *SessionHandler) Navigation(c *fiber.Ctx) error {
	return c.JSON(navigation.For(h.store.Current()))
}

func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	signedIn, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessionResponse(signedIn))
}

func (h *SessionHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	result, err := h.authService.Register(c.UserContext(), req.Email, req.Password, req.FullName, models.Role(req.Role))
	if err != nil {
		return respondError(c, err)
	}

	message := "Registration successful"
	if result.NeedsConfirmation {
		message = "Please check your inbox for email verification!"
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{
		User:              result.User,
		NeedsConfirmation: result.NeedsConfirmation,
		Message:           message,
	})
}

func (h *SessionHandler) DemoLogin(c *fiber.Ctx) error {
	var req dto.DemoLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	signedIn, err := h.authService.DemoLogin(c.UserContext(), models.Role(req.Role))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessionResponse(signedIn))
}

func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.SignOut(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func sessionResponse(in *services.SignedIn) dto.SessionResponse {
	snap := in.Snapshot
	resp := dto.SessionResponse{
		State:       string(snap.State),
		Mode:        string(snap.Mode()),
		Generation:  snap.Generation,
		AccessToken: in.Token,
		User:        snap.User,
		Profile:     snap.Profile,
	}
	if snap.Session != nil {
		expires := snap.Session.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}
