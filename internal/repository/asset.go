package repository

import (
	"context"

	"vaultapi/internal/model"
)

// AssetFilter narrows asset listings. Zero values mean "no constraint".
type AssetFilter struct {
	OwnerID  string
	FolderID *string
	Search   string // matches title or file name, case-insensitive
	Genre    string
	Key      string
	Kind     string
	BPMMin   int
	BPMMax   int
}

// AssetRepository defines data access for assets using SQL queries only.
// No business logic here — strictly persistence operations.
type AssetRepository interface {
	// Create inserts a new asset record and returns the stored row.
	Create(ctx context.Context, asset *model.Asset) (*model.Asset, error)

	// FindByID returns an asset by its ID.
	FindByID(ctx context.Context, id string) (*model.Asset, error)

	// List returns a filtered, paginated list of assets and the total count
	// for the filter.
	List(ctx context.Context, f AssetFilter, pq PageQuery) (*PageResult[model.Asset], error)

	// PatchMetadata applies a partial metadata update. Nil fields keep their
	// stored values; the call is idempotent.
	PatchMetadata(ctx context.Context, id string, meta model.AudioMetadata) error

	// UpdateTitle changes the display title.
	UpdateTitle(ctx context.Context, id, title string) error

	// SetFolder moves the asset into the given folder, or out of any folder
	// when folderID is nil. folder_id is the only membership relation, so a
	// single update fully reassigns the asset.
	SetFolder(ctx context.Context, id string, folderID *string) error
}
