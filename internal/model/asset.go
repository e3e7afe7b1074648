package model

import "time"

// Asset represents one uploaded file in the vault.
// This is a pure domain model with no database-specific dependencies or tags.
// FolderID is the only relation between an asset and a folder; an asset
// belongs to at most one folder at a time.
type Asset struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	Kind        string    `json:"kind"`
	StorageKey  string    `json:"storage_key"`
	FolderID    *string   `json:"folder_id,omitempty"`
	OwnerID     string    `json:"owner_id"`
	Duration    *float64  `json:"duration,omitempty"`
	SampleRate  *int      `json:"sample_rate,omitempty"`
	BPM         *int      `json:"bpm,omitempty"`
	Key         *string   `json:"key,omitempty"`
	Genre       *string   `json:"genre,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AudioMetadata is the partial update applied to an asset after enrichment.
// Nil fields are left untouched by the patch.
type AudioMetadata struct {
	Duration   *float64 `json:"duration,omitempty"`
	SampleRate *int     `json:"sample_rate,omitempty"`
	BPM        *int     `json:"bpm,omitempty"`
	Key        *string  `json:"key,omitempty"`
	Genre      *string  `json:"genre,omitempty"`
}

// Empty reports whether the patch carries no fields at all.
func (m AudioMetadata) Empty() bool {
	return m.Duration == nil && m.SampleRate == nil && m.BPM == nil && m.Key == nil && m.Genre == nil
}
