package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"vrp-planner/internal/api/dto"
	"vrp-planner/internal/apperr"
)

// writeError maps the error taxonomy in internal/apperr onto HTTP status
// codes, the way the teacher's writeError centralizes response shape for
// every handler. A *apperr.PartialMaterializationError is reported as 207 so
// callers can distinguish "some vehicles degraded" from a hard failure.
func writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		status = fe.Code
	case errors.Is(err, apperr.ErrBadInput), errors.Is(err, apperr.ErrStaleReference):
		status = fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, apperr.ErrStaleMatrix):
		status = fiber.StatusConflict
	case errors.Is(err, apperr.ErrInfeasible), errors.Is(err, apperr.ErrNoSolution):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrProviderUnavailable):
		status = fiber.StatusBadGateway
	default:
		var partial *apperr.PartialMaterializationError
		if errors.As(err, &partial) {
			status = fiber.StatusMultiStatus
		}
	}

	if status == fiber.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	return c.Status(status).JSON(dto.ErrorResponseDTO{Error: err.Error()})
}
