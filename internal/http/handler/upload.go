package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"vaultapi/internal/service"
)

// UploadBatch ingests a multipart batch: repeated "files" parts plus the
// ownerId and optional ownerRoles (JSON array) form fields. The response is
// the settled report; per-file failures land on the queue items, not here.
func UploadBatch(svc service.IngestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form required")
		}
		headers := form.File["files"]
		if len(headers) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
		}

		ownerID := c.FormValue("ownerId")
		if ownerID == "" {
			return writeError(c, fiber.StatusBadRequest, "OWNER_REQUIRED", "ownerId is required")
		}
		var roles []string
		if raw := c.FormValue("ownerRoles"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &roles); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ROLES", "ownerRoles must be a JSON string array")
			}
		}

		files := make([]service.BatchFile, len(headers))
		for i, fh := range headers {
			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			files[i] = service.BatchFile{
				Name:        fh.Filename,
				Size:        fh.Size,
				ContentType: ct,
				Open:        openPart(fh),
			}
		}

		report, err := svc.UploadBatch(c.UserContext(), service.Owner{ID: ownerID, Roles: roles}, files, nil)
		if err != nil {
			if errors.Is(err, service.ErrNoFiles) {
				return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(report)
	}
}

// openPart adapts a multipart header into the reopenable reader the
// ingestion pipeline expects. multipart files are seekable, so the
// enrichment worker can reopen the same part after the upload consumed it.
func openPart(fh *multipart.FileHeader) func() (io.ReadSeekCloser, error) {
	return func() (io.ReadSeekCloser, error) {
		return fh.Open()
	}
}
