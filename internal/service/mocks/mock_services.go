package mocks

import (
	"context"

	"vaultapi/internal/model"
	"vaultapi/internal/repository"
	"vaultapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) List(ctx context.Context, f repository.AssetFilter, limit, offset int) (*service.AssetListResult, error) {
	args := m.Called(ctx, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AssetListResult), args.Error(1)
}

func (m *MockAssetService) Get(ctx context.Context, id string) (*model.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetService) Rename(ctx context.Context, id, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockAssetService) PatchMetadata(ctx context.Context, id string, meta model.AudioMetadata) error {
	args := m.Called(ctx, id, meta)
	return args.Error(0)
}

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) Create(ctx context.Context, name, color, createdBy string, memberIDs []string) (*model.Folder, error) {
	args := m.Called(ctx, name, color, createdBy, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Get(ctx context.Context, id string) (*model.Folder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) List(ctx context.Context, createdBy string) ([]model.Folder, error) {
	args := m.Called(ctx, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderService) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockFolderService) Assign(ctx context.Context, assetID string, folderID *string) error {
	args := m.Called(ctx, assetID, folderID)
	return args.Error(0)
}

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) UploadBatch(ctx context.Context, owner service.Owner, files []service.BatchFile, session *service.BatchSession) (*service.UploadReport, error) {
	args := m.Called(ctx, owner, files, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadReport), args.Error(1)
}

type MockMergeService struct {
	mock.Mock
}

func (m *MockMergeService) MergeAssets(ctx context.Context, sourceID, targetID string) (*model.Folder, error) {
	args := m.Called(ctx, sourceID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}
