package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/repository"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	pushService    *services.PushService
}

func NewProfileHandler(profileService *services.ProfileService, pushService *services.PushService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, pushService: pushService}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}

	details, err := h.profileService.Profile(c.UserContext(), snap)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(details)
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	details, err := h.profileService.UpdateProfile(c.UserContext(), snap, repository.ProfileUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
		Patient:  req.Patient,
		Doctor:   req.Doctor,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(details)
}

func (h *ProfileHandler) Settings(c *fiber.Ctx) error {
	return c.JSON(h.profileService.Settings())
}

// UpdateSettings applies only the fields present in the body.
func (h *ProfileHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	settings := h.profileService.Settings()
	if req.Notifications != nil {
		settings.Notifications = *req.Notifications
	}
	if req.DarkMode != nil {
		settings.DarkMode = *req.DarkMode
	}
	return c.JSON(h.profileService.UpdateSettings(settings))
}

func (h *ProfileHandler) RegisterPushToken(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.PushTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	result, err := h.pushService.RegisterPushToken(c.UserContext(), snap, services.PushRegistration{
		Platform:          req.Platform,
		IsPhysicalDevice:  req.IsPhysicalDevice,
		PermissionGranted: req.PermissionGranted,
		Token:             req.Token,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
