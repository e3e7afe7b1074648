package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vaultapi/internal/model"
	"vaultapi/internal/repository"
	"vaultapi/internal/service"
)

// ListAssets filters and pages the asset library.
func ListAssets(svc service.AssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "50"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		filter := repository.AssetFilter{
			OwnerID: c.Query("ownerId"),
			Search:  c.Query("search"),
			Genre:   c.Query("genre"),
			Key:     c.Query("key"),
			Kind:    c.Query("kind"),
		}
		if v := c.Query("folderId"); v != "" {
			filter.FolderID = &v
		}
		if v := c.Query("bpmMin"); v != "" {
			if filter.BPMMin, err = strconv.Atoi(v); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BPM", "invalid bpmMin")
			}
		}
		if v := c.Query("bpmMax"); v != "" {
			if filter.BPMMax, err = strconv.Atoi(v); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BPM", "invalid bpmMax")
			}
		}

		res, err := svc.List(c.UserContext(), filter, limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetAsset returns a single asset by ID.
func GetAsset(svc service.AssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		asset, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "asset not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(asset)
	}
}

// UpdateAsset changes the asset's mutable display title.
func UpdateAsset(svc service.AssetService) fiber.Handler {
	type request struct {
		Title string `json:"title"`
	}
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req request
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := svc.Rename(c.UserContext(), id, req.Title); err != nil {
			switch {
			case errors.Is(err, service.ErrTitleRequired):
				return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "asset not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PatchAssetMetadata applies a partial metadata update. Absent fields keep
// their stored values, so replaying the same patch is harmless.
func PatchAssetMetadata(svc service.AssetService) fiber.Handler {
	type request struct {
		Duration   *float64 `json:"duration"`
		SampleRate *int     `json:"sampleRate"`
		BPM        *int     `json:"bpm"`
		Key        *string  `json:"key"`
		Genre      *string  `json:"genre"`
	}
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req request
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		meta := model.AudioMetadata{
			Duration:   req.Duration,
			SampleRate: req.SampleRate,
			BPM:        req.BPM,
			Key:        req.Key,
			Genre:      req.Genre,
		}
		if err := svc.PatchMetadata(c.UserContext(), id, meta); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "asset not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AssignAssetFolder moves an asset into a folder, or unfiles it when the
// body carries a null folderId.
func AssignAssetFolder(svc service.FolderService) fiber.Handler {
	type request struct {
		FolderID *string `json:"folderId"`
	}
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req request
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := svc.Assign(c.UserContext(), id, req.FolderID); err != nil {
			switch {
			case errors.Is(err, service.ErrFolderNotFound):
				return writeError(c, fiber.StatusNotFound, "FOLDER_NOT_FOUND", "folder not found")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "asset not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
