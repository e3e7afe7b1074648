package repository

import (
	"context"

	"vaultapi/internal/model"
)

// FolderRepository defines data access for folders. Member asset IDs are
// always derived from assets.folder_id at read time, never stored.
type FolderRepository interface {
	// Create inserts a new folder row and returns the stored record.
	Create(ctx context.Context, folder *model.Folder) (*model.Folder, error)

	// FindByID returns a folder with its derived member asset IDs.
	FindByID(ctx context.Context, id string) (*model.Folder, error)

	// List returns folders, optionally restricted to a creator, with derived
	// member asset IDs.
	List(ctx context.Context, createdBy string) ([]model.Folder, error)

	// Delete removes the folder. Member assets are kept; their folder_id is
	// cleared. Returns false when no such folder existed.
	Delete(ctx context.Context, id string) (bool, error)

	// MemberIDs returns the IDs of assets whose folder_id equals id.
	MemberIDs(ctx context.Context, id string) ([]string, error)
}
