package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaultapi/internal/model"
	"vaultapi/internal/repository"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrNameRequired   = errors.New("folder name is required")
)

// FolderService manages the folder registry and asset-to-folder assignment.
// Folder membership is never stored on the folder itself; it is derived from
// the assets' folder reference at read time.
type FolderService interface {
	// Create registers a new folder and optionally assigns initial members.
	Create(ctx context.Context, name, color, createdBy string, memberIDs []string) (*model.Folder, error)

	// Get returns a folder with its derived member list.
	Get(ctx context.Context, id string) (*model.Folder, error)

	// List returns folders created by the given user, newest first.
	List(ctx context.Context, createdBy string) ([]model.Folder, error)

	// Delete removes a folder. Member assets survive and become unfiled.
	// The returned bool reports whether the folder existed.
	Delete(ctx context.Context, id string) (bool, error)

	// Assign moves an asset into a folder, or unfiles it when folderID is nil.
	Assign(ctx context.Context, assetID string, folderID *string) error
}

type folderService struct {
	folders repository.FolderRepository
	assets  repository.AssetRepository
	logger  *zap.SugaredLogger
}

// NewFolderService constructs a new FolderService.
func NewFolderService(folders repository.FolderRepository, assets repository.AssetRepository, logger *zap.SugaredLogger) FolderService {
	return &folderService{folders: folders, assets: assets, logger: logger}
}

func (s *folderService) Create(ctx context.Context, name, color, createdBy string, memberIDs []string) (*model.Folder, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if color == "" {
		color = model.FolderColorAuto
	}

	folder := &model.Folder{
		ID:        uuid.New().String(),
		Name:      name,
		Color:     color,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.folders.Create(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	for _, assetID := range memberIDs {
		if err := s.assets.SetFolder(ctx, assetID, &created.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("assign asset %s: %w", assetID, err)
		}
		created.MemberAssetIDs = append(created.MemberAssetIDs, assetID)
	}
	return created, nil
}

func (s *folderService) Get(ctx context.Context, id string) (*model.Folder, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	folder, err := s.folders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFolderNotFound
		}
		return nil, err
	}
	return folder, nil
}

func (s *folderService) List(ctx context.Context, createdBy string) ([]model.Folder, error) {
	return s.folders.List(ctx, createdBy)
}

func (s *folderService) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrIDRequired
	}
	existed, err := s.folders.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if existed {
		s.logger.Infow("folder deleted", "folder_id", id)
	}
	return existed, nil
}

func (s *folderService) Assign(ctx context.Context, assetID string, folderID *string) error {
	if assetID == "" {
		return ErrIDRequired
	}
	if folderID != nil {
		if _, err := s.folders.FindByID(ctx, *folderID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrFolderNotFound
			}
			return err
		}
	}
	if err := s.assets.SetFolder(ctx, assetID, folderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
