package partitions

import (
	"errors"

	"partition-manager/core/catalog"
	"partition-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for partition reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the partition routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/partitions")
	group.Post("/reconcile", h.HandleReconcile)
}

// reconcileRequest is the trigger payload, mirroring the create-partitions
// command's arguments.
type reconcileRequest struct {
	Database  string `json:"database"`
	Table     string `json:"table"`
	DryRun    bool   `json:"dry_run"`
	LimitDays int    `json:"limit_days"`
}

// HandleReconcile discovers partitions on disk and creates any the catalog
// is missing. With dry_run set, the computed plan is returned without
// mutating the catalog.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req reconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Database == "" || req.Table == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "database and table are required",
		})
	}

	result, err := h.service.ReconcileCreate(c.Context(), req.Database, req.Table, req.DryRun, req.LimitDays)
	if err != nil {
		l.Error("Partition reconciliation failed", zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, catalog.ErrNotFound) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	l.Info("Partition reconciliation complete",
		zap.String("database", req.Database),
		zap.String("table", req.Table),
		zap.Bool("dry_run", req.DryRun),
		zap.Int("creates", result.Plan.Summary.Creates))
	return c.JSON(result)
}
