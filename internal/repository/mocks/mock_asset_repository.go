package mocks

import (
	"context"

	"vaultapi/internal/model"
	"vaultapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) Create(ctx context.Context, asset *model.Asset) (*model.Asset, error) {
	args := m.Called(ctx, asset)
	if f, ok := args.Get(0).(func(context.Context, *model.Asset) *model.Asset); ok {
		return f(ctx, asset), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepository) List(ctx context.Context, f repository.AssetFilter, pq repository.PageQuery) (*repository.PageResult[model.Asset], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Asset]), args.Error(1)
}

func (m *MockAssetRepository) PatchMetadata(ctx context.Context, id string, meta model.AudioMetadata) error {
	args := m.Called(ctx, id, meta)
	return args.Error(0)
}

func (m *MockAssetRepository) UpdateTitle(ctx context.Context, id, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockAssetRepository) SetFolder(ctx context.Context, id string, folderID *string) error {
	args := m.Called(ctx, id, folderID)
	return args.Error(0)
}
