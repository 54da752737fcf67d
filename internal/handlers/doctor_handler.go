package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/services"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

type DoctorHandler struct {
	doctorService *services.DoctorService
}

func NewDoctorHandler(doctorService *services.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorService: doctorService}
}

func (h *DoctorHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": h.doctorService.Categories()})
}

// List serves the home screen: ?q= searches name and specialization,
// ?category= narrows to one specialization.
func (h *DoctorHandler) List(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}

	doctors, err := h.doctorService.ListDoctors(c.UserContext(), snap, c.Query("q"), c.Query("category", services.CategoryAll))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"doctors": doctors})
}

func (h *DoctorHandler) Get(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}

	doctor, err := h.doctorService.GetDoctor(c.UserContext(), snap, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doctor)
}

func snapshot(c *fiber.Ctx) (session.Snapshot, error) {
	snap, ok := middleware.Snapshot(c)
	if !ok {
		return snap, session.ErrNotAuthenticated
	}
	return snap, nil
}
