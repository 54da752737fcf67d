package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/services"
)

type AppointmentHandler struct {
	appointmentService  *services.AppointmentService
	prescriptionService *services.PrescriptionService
}

func NewAppointmentHandler(appointmentService *services.AppointmentService, prescriptionService *services.PrescriptionService) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService:  appointmentService,
		prescriptionService: prescriptionService,
	}
}

func (h *AppointmentHandler) BookingOptions(c *fiber.Ctx) error {
	return c.JSON(h.appointmentService.BookingOptions())
}

func (h *AppointmentHandler) Book(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.BookAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	appt, err := h.appointmentService.Book(c.UserContext(), snap, req.DoctorID, req.Date, req.Time)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BookAppointmentResponse{
		Appointment: *appt,
		Message:     "Appointment booked successfully",
	})
}

func (h *AppointmentHandler) Mine(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}

	appts, err := h.appointmentService.PatientAppointments(c.UserContext(), snap)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"appointments": appts})
}

func (h *AppointmentHandler) Prescription(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}

	p, err := h.appointmentService.Prescription(c.UserContext(), snap, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *AppointmentHandler) Dashboard(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}

	dash, err := h.appointmentService.Dashboard(c.UserContext(), snap)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dash)
}

func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	dash, err := h.appointmentService.UpdateStatus(c.UserContext(), snap, c.Params("id"), models.AppointmentStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dash)
}

func (h *AppointmentHandler) CreatePrescription(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.PrescriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	p, err := h.prescriptionService.Prescribe(c.UserContext(), snap, req.AppointmentID, req.Medicines, req.Instructions)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *AppointmentHandler) PatientHistory(c *fiber.Ctx) error {
	snap, err := snapshot(c)
	if err != nil {
		return respondError(c, err)
	}

	history, err := h.prescriptionService.PatientHistory(c.UserContext(), snap, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"history": history})
}
