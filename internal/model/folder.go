package model

import "time"

// Folder colors used by the ingestion flow. Presentation hints only.
const (
	FolderColorProject = "#9d4edd" // auto-created around a DAW session file
	FolderColorAuto    = "#00ffff" // auto-created from related filenames
	FolderColorMerge   = "#00ff41" // created by merging two assets
)

// Folder is a named grouping of assets (a "project").
//
// MemberAssetIDs is derived from assets.folder_id on every read and is never
// stored; Asset.FolderID is the single source of truth for membership.
type Folder struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Color          string    `json:"color"`
	MemberAssetIDs []string  `json:"member_asset_ids"`
	CreatedAt      time.Time `json:"created_at"`
	CreatedBy      string    `json:"created_by"`
}
