package mirror

import (
	"errors"

	"calendar-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync passes.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/", h.HandleRun)
	group.Get("/last", h.HandleLast)
	group.Get("/plan", h.HandlePlan)
	group.Get("/reports", h.HandleListReports)
	group.Get("/reports/*", h.HandleGetReport)
}

// HandleRun triggers a pass.
// @Summary Run Sync Pass
// @Description Runs one reconciliation pass over both calendars. With async=true the pass runs in the background and the pass id is returned immediately.
// @Tags sync
// @Produce json
// @Param async query bool false "Start the pass without waiting for it"
// @Success 200 {object} Result
// @Success 202 {object} map[string]string "Pass started"
// @Failure 409 {object} map[string]string "Another pass is running"
// @Failure 500 {object} Result "Pass failed"
// @Router /sync [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	if c.QueryBool("async") {
		passID, err := h.service.Start(TriggerHTTP)
		if errors.Is(err, ErrPassRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		l.Info("Sync pass queued", zap.String("pass_id", passID))
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"pass_id": passID, "status": "started"})
	}

	l.Info("Triggering sync pass")
	result, err := h.service.Run(c.Context(), TriggerHTTP)
	if errors.Is(err, ErrPassRunning) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if result.Error != "" {
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}
	return c.JSON(result)
}

// HandleLast returns the most recent pass result.
// @Summary Last Pass
// @Tags sync
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "No pass has run yet"
// @Router /sync/last [get]
func (h *Handler) HandleLast(c *fiber.Ctx) error {
	last := h.service.Last()
	if last == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no pass has run yet"})
	}
	return c.JSON(fiber.Map{"running": h.service.Running(), "result": last})
}

// HandlePlan returns the dry-run plan.
// @Summary Plan Sync Pass
// @Description Lists what the next pass would create, update and delete without touching either calendar or the ledger.
// @Tags sync
// @Produce json
// @Success 200 {object} reconcile.PassPlan
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/plan [get]
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	plan, err := h.service.Plan(c.Context())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Plan failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(plan)
}

// HandleListReports lists archived reports.
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	archive := h.service.Archive()
	if archive == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "report archive is disabled"})
	}
	entries, err := archive.List(c.Context(), c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(entries)
}

// HandleGetReport returns one archived report.
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	archive := h.service.Archive()
	if archive == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "report archive is disabled"})
	}
	key := c.Params("*")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "report key is required"})
	}
	r, err := archive.Load(c.Context(), key)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(r)
}
