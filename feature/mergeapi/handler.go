package mergeapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"scene-merge/core/logger"
	"scene-merge/core/merge"
)

// Handler handles HTTP requests for merge sessions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the merge session routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/merge/sessions")
	group.Post("/", h.HandleCreateSession)
	group.Get("/:id/actions", h.HandleListActions)
	group.Post("/:id/actions/:actionID/decision", h.HandleSetDecision)
	group.Post("/:id/apply", h.HandleApply)
}

// HandleCreateSession creates a merge session from snapshot and
// comparison objects in storage.
func (h *Handler) HandleCreateSession(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Base == "" || req.Source == "" || req.Target == "" ||
		req.BaseToSource == "" || req.BaseToTarget == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "base, source, target, base_to_source and base_to_target are required",
		})
	}

	info, err := h.service.CreateSession(c.Context(), req)
	if err != nil {
		var precondition *merge.PreconditionError
		if errors.As(err, &precondition) {
			l.Warn("Merge precondition failed", zap.Error(err))
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Merge session creation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(info)
}

// HandleListActions returns the session's action list.
func (h *Handler) HandleListActions(c *fiber.Ctx) error {
	actions, err := h.service.Actions(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"actions": actions})
}

// HandleSetDecision records an accept/reject choice on a conflict action.
func (h *Handler) HandleSetDecision(c *fiber.Ctx) error {
	var req struct {
		Decision string `json:"decision"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	err := h.service.SetDecision(c.Params("id"), c.Params("actionID"), merge.Decision(req.Decision))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleApply applies the session's actions and returns the merged snapshot.
func (h *Handler) HandleApply(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req ApplyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	result, err := h.service.Apply(c.Context(), c.Params("id"), req)
	if err != nil {
		if errors.Is(err, merge.ErrUndecided) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Merge apply failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}
