package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"vaultapi/internal/service"
)

// MergeAssets combines two assets into a new project folder. A failure while
// moving the assets has already been rolled back by the service and maps to
// a bad-gateway class response so callers can distinguish it from input
// errors.
func MergeAssets(svc service.MergeService) fiber.Handler {
	type request struct {
		SourceID string `json:"sourceId"`
		TargetID string `json:"targetId"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		folder, err := svc.MergeAssets(c.UserContext(), req.SourceID, req.TargetID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrIDRequired):
				return writeError(c, fiber.StatusBadRequest, "IDS_REQUIRED", "sourceId and targetId are required")
			case errors.Is(err, service.ErrSameAsset):
				return writeError(c, fiber.StatusConflict, "SELF_MERGE", "cannot merge an asset with itself")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "asset not found")
			case errors.Is(err, service.ErrMergeFailed):
				return writeError(c, fiber.StatusBadGateway, "MERGE_FAILED", "merge failed and was rolled back")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(folder)
	}
}
