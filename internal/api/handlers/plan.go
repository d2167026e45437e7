package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"vrp-planner/internal/api/dto"
	"vrp-planner/internal/apperr"
	"vrp-planner/internal/services"
)

// PlanHandler exposes the §6 "Optimize" and "Materialize baseline"
// operations over the project's current stop set and matrix snapshot.
type PlanHandler struct {
	Lifecycle *services.PlanLifecycle
}

func (h *PlanHandler) Optimize(c *fiber.Ctx) error {
	projectID := c.Params("projectID")

	var req dto.OptimizeRequestDTO
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.NewError(fiber.StatusBadRequest, "malformed request body"))
	}

	plan, err := h.Lifecycle.Optimize(c.Context(), projectID, dto.ToOptimizeRequest(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromOrderedPlan(plan))
}

func (h *PlanHandler) MaterializeBaseline(c *fiber.Ctx) error {
	projectID := c.Params("projectID")

	var req dto.MaterializeRequestDTO
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.NewError(fiber.StatusBadRequest, "malformed request body"))
	}

	artifact, err := h.Lifecycle.MaterializeBaseline(c.Context(), projectID, dto.ToMaterializationParams(req))
	if err != nil {
		// A partial-materialization error still carries a usable artifact
		// (§4.2): the response body reports it, not just the status code.
		// Anything else (NotFound, a hard save failure) is a real error and
		// must not be disguised as a 207.
		var partial *apperr.PartialMaterializationError
		if errors.As(err, &partial) {
			return c.Status(fiber.StatusMultiStatus).JSON(dto.FromPlanArtifact(artifact))
		}
		return writeError(c, err)
	}
	return c.JSON(dto.FromPlanArtifact(artifact))
}
