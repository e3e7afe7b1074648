package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vaultapi/internal/service"
)

// CreateFolder registers a manual folder, optionally filing assets into it.
func CreateFolder(svc service.FolderService) fiber.Handler {
	type request struct {
		Name      string   `json:"name"`
		Color     string   `json:"color"`
		CreatedBy string   `json:"createdBy"`
		AssetIDs  []string `json:"assetIds"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		folder, err := svc.Create(c.UserContext(), req.Name, req.Color, req.CreatedBy, req.AssetIDs)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNameRequired):
				return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "folder name is required")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "ASSET_NOT_FOUND", "member asset not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(folder)
	}
}

// ListFolders returns folders, optionally restricted to a creator.
func ListFolders(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		folders, err := svc.List(c.UserContext(), c.Query("createdBy"))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(folders)
	}
}

// GetFolder returns one folder with its derived member asset IDs.
func GetFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		folder, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrFolderNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "folder not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(folder)
	}
}

// DeleteFolder removes a folder; its member assets become unfiled.
func DeleteFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		existed, err := svc.Delete(c.UserContext(), id)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if !existed {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "folder not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
