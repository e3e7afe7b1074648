package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"vaultapi/internal/service"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Assets  service.AssetService
	Ingest  service.IngestService
	Folders service.FolderService
	Merge   service.MergeService
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
// Handlers stay thin; anything beyond parsing and status mapping lives in
// the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/assets", UploadBatch(svcs.Ingest))
	app.Get("/assets", ListAssets(svcs.Assets))
	app.Post("/assets/merge", MergeAssets(svcs.Merge))
	app.Get("/assets/:id", GetAsset(svcs.Assets))
	app.Patch("/assets/:id", UpdateAsset(svcs.Assets))
	app.Patch("/assets/:id/metadata", PatchAssetMetadata(svcs.Assets))
	app.Put("/assets/:id/folder", AssignAssetFolder(svcs.Folders))

	app.Post("/folders", CreateFolder(svcs.Folders))
	app.Get("/folders", ListFolders(svcs.Folders))
	app.Get("/folders/:id", GetFolder(svcs.Folders))
	app.Delete("/folders/:id", DeleteFolder(svcs.Folders))
}
