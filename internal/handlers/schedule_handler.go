package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/services"
)

type ScheduleHandler struct {
	scheduleService *services.ScheduleService
}

func NewScheduleHandler(scheduleService *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}

	week, err := h.scheduleService.Schedule(c.UserContext(), snap)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"availability": week})
}

// SaveDay handles PUT /schedule/:day, day being 0 (Sunday) to 6.
func (h *ScheduleHandler) SaveDay(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}
	day, err := c.ParamsInt("day")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid day of week")
	}
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	week, err := h.scheduleService.SaveDay(c.UserContext(), snap, models.Availability{
		DayOfWeek: day,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Enabled:   req.Enabled,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"availability": week})
}
