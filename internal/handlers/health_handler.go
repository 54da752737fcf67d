package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/config"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/database"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

type HealthHandler struct {
	store *session.Store
	cfg   *config.Config
	db    *gorm.DB
}

// NewHealthHandler reports on the session store and storage backend. db is
// nil unless sessions are kept in postgres.
func NewHealthHandler(store *session.Store, cfg *config.Config, db *gorm.DB) *HealthHandler {
	return &HealthHandler{store: store, cfg: cfg, db: db}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storage := h.cfg.SessionStorage
	if h.db != nil {
		if err := database.Ping(h.db); err != nil {
			storage += ": unhealthy: " + err.Error()
		} else {
			storage += ": ok"
		}
	}

	gateway := "demo only"
	if h.cfg.GatewayConfigured() {
		gateway = "configured"
	}

	snap := h.store.Current()
	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Session:   string(snap.State),
		Mode:      string(snap.Mode()),
		Gateway:   gateway,
		Storage:   storage,
	})
}
