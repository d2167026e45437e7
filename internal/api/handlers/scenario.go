package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vrp-planner/internal/api/dto"
	"vrp-planner/internal/ports"
	"vrp-planner/internal/services"
)

// ScenarioHandler exposes the §6 scenario lifecycle operations (create,
// list, delete, read artifact) plus the §4.4/§4.5 edit operations that act
// on a scenario without touching the baseline.
type ScenarioHandler struct {
	PlanStore ports.PlanStore
	EditDelta *services.EditDeltaEngine
	Editor    *services.ScenarioEditor
}

func (h *ScenarioHandler) List(c *fiber.Ctx) error {
	projectID := c.Params("projectID")
	ids, err := h.PlanStore.ListScenarios(c.Context(), projectID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"scenario_ids": ids})
}

func (h *ScenarioHandler) Create(c *fiber.Ctx) error {
	projectID := c.Params("projectID")

	var req dto.CreateScenarioRequestDTO
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.NewError(fiber.StatusBadRequest, "malformed request body"))
	}

	if err := h.PlanStore.CreateScenario(c.Context(), projectID, req.ScenarioID, req.SourceScenarioID); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"scenario_id": req.ScenarioID})
}

func (h *ScenarioHandler) Delete(c *fiber.Ctx) error {
	projectID := c.Params("projectID")
	scenarioID := c.Params("scenarioID")

	if err := h.PlanStore.DeleteScenario(c.Context(), projectID, scenarioID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ScenarioHandler) Artifact(c *fiber.Ctx) error {
	projectID := c.Params("projectID")
	scenarioID := c.Params("scenarioID")

	artifact, err := h.PlanStore.LoadArtifact(c.Context(), projectID, scenarioID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPlanArtifact(artifact))
}

// Reload runs the §4.4 edit-delta engine for a scenario, re-materializing
// only the vehicles whose fingerprint actually changed.
func (h *ScenarioHandler) Reload(c *fiber.Ctx) error {
	projectID := c.Params("projectID")
	scenarioID := c.Params("scenarioID")

	var req dto.MaterializeRequestDTO
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.NewError(fiber.StatusBadRequest, "malformed request body"))
	}

	stats, err := h.EditDelta.Reload(c.Context(), projectID, scenarioID, dto.ToMaterializationParams(req))
	if err != nil {
		if stats.Failed > 0 {
			return c.Status(fiber.StatusMultiStatus).JSON(dto.FromReloadStats(stats))
		}
		return writeError(c, err)
	}
	return c.JSON(dto.FromReloadStats(stats))
}

// ReorderTimeline persists a scenario's full replacement tabular edit plan
// (§6 "Persist timeline reorder"). It never calls the directions provider.
func (h *ScenarioHandler) ReorderTimeline(c *fiber.Ctx) error {
	projectID := c.Params("projectID")
	scenarioID := c.Params("scenarioID")

	var req dto.ReorderTimelineRequestDTO
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.NewError(fiber.StatusBadRequest, "malformed request body"))
	}

	if err := h.Editor.ReorderTimeline(c.Context(), projectID, scenarioID, dto.ToEditPlan(req)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateStopLocation records a per-scenario coordinate override (§4.5).
func (h *ScenarioHandler) UpdateStopLocation(c *fiber.Ctx) error {
	projectID := c.Params("projectID")
	scenarioID := c.Params("scenarioID")

	var req dto.UpdateStopLocationRequestDTO
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.NewError(fiber.StatusBadRequest, "malformed request body"))
	}

	if err := h.Editor.UpdateStopLocation(c.Context(), projectID, scenarioID, req.StopID, dto.ToCoordinates(req.Coordinates)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
