package service

import (
	"context"
	"database/sql"
	"errors"

	"vaultapi/internal/model"
	"vaultapi/internal/repository"
)

var (
	ErrIDRequired    = errors.New("id is required")
	ErrNotFound      = errors.New("asset not found")
	ErrTitleRequired = errors.New("title is required")
)

// AssetListResult is the service-level DTO for paginated assets.
type AssetListResult struct {
	Items []model.Asset `json:"data"`
	Total int           `json:"total"`
}

// AssetService defines the read/update use cases for assets. Creation happens
// exclusively through the ingestion flow; deletion is not this subsystem's
// responsibility.
type AssetService interface {
	// List returns assets matching the filter using limit/offset and a total count.
	List(ctx context.Context, f repository.AssetFilter, limit, offset int) (*AssetListResult, error)

	// Get returns a single asset by its ID.
	Get(ctx context.Context, id string) (*model.Asset, error)

	// Rename changes the asset's display title.
	Rename(ctx context.Context, id, title string) error

	// PatchMetadata applies a partial, idempotent metadata update.
	PatchMetadata(ctx context.Context, id string, meta model.AudioMetadata) error
}

type assetService struct {
	repo repository.AssetRepository
}

// NewAssetService constructs a new AssetService.
func NewAssetService(repo repository.AssetRepository) AssetService {
	return &assetService{repo: repo}
}

func (s *assetService) List(ctx context.Context, f repository.AssetFilter, limit, offset int) (*AssetListResult, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, f, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &AssetListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *assetService) Get(ctx context.Context, id string) (*model.Asset, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return asset, nil
}

func (s *assetService) Rename(ctx context.Context, id, title string) error {
	if id == "" {
		return ErrIDRequired
	}
	if title == "" {
		return ErrTitleRequired
	}
	if err := s.repo.UpdateTitle(ctx, id, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *assetService) PatchMetadata(ctx context.Context, id string, meta model.AudioMetadata) error {
	if id == "" {
		return ErrIDRequired
	}
	if meta.Empty() {
		return nil
	}
	if err := s.repo.PatchMetadata(ctx, id, meta); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
