package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"vaultapi/internal/model"
	"vaultapi/internal/repository"
	repoMocks "vaultapi/internal/repository/mocks"
	"vaultapi/internal/storage"
	storeMocks "vaultapi/internal/storage/mocks"
)

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

func batchFile(name string) BatchFile {
	return BatchFile{
		Name:        name,
		Size:        4,
		ContentType: "application/octet-stream",
		Open: func() (io.ReadSeekCloser, error) {
			return nopReadSeekCloser{bytes.NewReader([]byte("data"))}, nil
		},
	}
}

// fakeEnricher records handoffs so tests can wait for the fire-and-forget
// goroutine instead of sleeping.
type fakeEnricher struct {
	mu     sync.Mutex
	assets []*model.Asset
	done   chan struct{}
}

func (f *fakeEnricher) Enrich(_ context.Context, asset *model.Asset, _ func() (io.ReadSeekCloser, error)) {
	f.mu.Lock()
	f.assets = append(f.assets, asset)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
}

func emptyPage() *repository.PageResult[model.Asset] {
	return &repository.PageResult[model.Asset]{Items: []model.Asset{}, Total: 0}
}

func TestIngestService_UploadBatch_EmptyBatch(t *testing.T) {
	svc := NewIngestService(new(storeMocks.MockStorage), new(repoMocks.MockAssetRepository), new(repoMocks.MockFolderRepository), nil, zap.NewNop().Sugar(), nil)

	_, err := svc.UploadBatch(context.Background(), Owner{ID: "u1"}, nil, nil)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestIngestService_UploadBatch_ChunksOfFive(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mAssets := new(repoMocks.MockAssetRepository)
	mFolders := new(repoMocks.MockFolderRepository)

	// Unique base names so no folders get planned.
	var files []BatchFile
	for i := 0; i < 12; i++ {
		files = append(files, batchFile(fmt.Sprintf("sample_%c.dat", 'a'+i)))
	}

	var mu sync.Mutex
	var putOrder []string
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			opt := args.Get(3).(storage.PutObjectOptions)
			mu.Lock()
			putOrder = append(putOrder, opt.Metadata["original-filename"])
			mu.Unlock()
		}).
		Return(storage.ObjectInfo{}, nil)
	mAssets.On("Create", mock.Anything, mock.Anything).
		Return(func(_ context.Context, a *model.Asset) *model.Asset { return a }, nil)
	mAssets.On("List", mock.Anything, repository.AssetFilter{OwnerID: "u1"}, mock.Anything).
		Return(emptyPage(), nil)

	report, err := NewIngestService(mStore, mAssets, mFolders, nil, zap.NewNop().Sugar(), nil).
		UploadBatch(ctx, Owner{ID: "u1"}, files, nil)

	assert.NoError(t, err)
	assert.Equal(t, 12, report.Completed)
	assert.Equal(t, 0, report.Failed)
	mFolders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	// Chunks run in order; within a chunk the uploads race, so compare the
	// windows as sets.
	assert.Len(t, putOrder, 12)
	for chunk := 0; chunk < 3; chunk++ {
		start := chunk * 5
		end := start + 5
		if end > 12 {
			end = 12
		}
		want := map[string]bool{}
		for i := start; i < end; i++ {
			want[files[i].Name] = true
		}
		for _, name := range putOrder[start:end] {
			assert.True(t, want[name], "file %s uploaded outside its chunk", name)
		}
	}
}

func TestIngestService_UploadBatch_PartialFailureIsolated(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mAssets := new(repoMocks.MockAssetRepository)
	mFolders := new(repoMocks.MockFolderRepository)

	files := []BatchFile{batchFile("take_a.dat"), batchFile("take_b.dat"), batchFile("take_c.dat")}

	failing := func(name string) interface{} {
		return mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			return opt.Metadata["original-filename"] == name
		})
	}
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, failing("take_b.dat")).
		Return(storage.ObjectInfo{}, errors.New("connection reset"))
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil)
	mAssets.On("Create", mock.Anything, mock.Anything).
		Return(func(_ context.Context, a *model.Asset) *model.Asset { return a }, nil)
	mAssets.On("List", mock.Anything, mock.Anything, mock.Anything).Return(emptyPage(), nil)

	report, err := NewIngestService(mStore, mAssets, mFolders, nil, zap.NewNop().Sugar(), nil).
		UploadBatch(context.Background(), Owner{ID: "u1"}, files, nil)

	assert.NoError(t, err)
	assert.Equal(t, 2, report.Completed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, model.UploadStatusError, report.Items[1].Status)
	assert.Contains(t, report.Items[1].Error, "store content")
	assert.Equal(t, model.UploadStatusComplete, report.Items[0].Status)
	assert.Equal(t, model.UploadStatusComplete, report.Items[2].Status)
	mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestIngestService_UploadBatch_InsertFailureRollsBackObject(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mAssets := new(repoMocks.MockAssetRepository)
	mFolders := new(repoMocks.MockFolderRepository)

	var storedKey string
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { storedKey = args.String(1) }).
		Return(storage.ObjectInfo{}, nil)
	mAssets.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("constraint violation"))
	mStore.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
		return key == storedKey && strings.HasPrefix(key, "assets/u1/")
	})).Return(nil)
	mAssets.On("List", mock.Anything, mock.Anything, mock.Anything).Return(emptyPage(), nil)

	report, err := NewIngestService(mStore, mAssets, mFolders, nil, zap.NewNop().Sugar(), nil).
		UploadBatch(context.Background(), Owner{ID: "u1"}, []BatchFile{batchFile("solo.dat")}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Items[0].Error, "persist asset")
	mStore.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestIngestService_UploadBatch_FolderPlan(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mAssets := new(repoMocks.MockAssetRepository)
	mFolders := new(repoMocks.MockFolderRepository)

	files := []BatchFile{
		batchFile("Song_Idea_1.mp3"),
		batchFile("Song_Idea_2.mp3"),
		batchFile("loop.wav"),
	}

	mFolders.On("Create", mock.Anything, mock.MatchedBy(func(f *model.Folder) bool {
		return f.Name == "Song_Idea" && f.Color == model.FolderColorAuto && f.CreatedBy == "u1"
	})).Return(func(_ context.Context, f *model.Folder) *model.Folder { return f }, nil)

	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil)

	var mu sync.Mutex
	folderByName := map[string]*string{}
	mAssets.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			a := args.Get(1).(*model.Asset)
			mu.Lock()
			folderByName[a.FileName] = a.FolderID
			mu.Unlock()
		}).
		Return(func(_ context.Context, a *model.Asset) *model.Asset { return a }, nil)
	mAssets.On("List", mock.Anything, mock.Anything, mock.Anything).Return(emptyPage(), nil)

	report, err := NewIngestService(mStore, mAssets, mFolders, nil, zap.NewNop().Sugar(), nil).
		UploadBatch(context.Background(), Owner{ID: "u1"}, files, nil)

	assert.NoError(t, err)
	assert.Len(t, report.Folders, 1)
	assert.Equal(t, "Song_Idea", report.Folders[0].Name)

	assert.NotNil(t, folderByName["Song_Idea_1.mp3"])
	assert.NotNil(t, folderByName["Song_Idea_2.mp3"])
	assert.Equal(t, folderByName["Song_Idea_1.mp3"], folderByName["Song_Idea_2.mp3"])
	assert.Nil(t, folderByName["loop.wav"])
}

func TestIngestService_UploadBatch_ProjectFolderColor(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mAssets := new(repoMocks.MockAssetRepository)
	mFolders := new(repoMocks.MockFolderRepository)

	mFolders.On("Create", mock.Anything, mock.MatchedBy(func(f *model.Folder) bool {
		return f.Name == "Track" && f.Color == model.FolderColorProject
	})).Return(func(_ context.Context, f *model.Folder) *model.Folder { return f }, nil)
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil)
	mAssets.On("Create", mock.Anything, mock.Anything).
		Return(func(_ context.Context, a *model.Asset) *model.Asset { return a }, nil)
	mAssets.On("List", mock.Anything, mock.Anything, mock.Anything).Return(emptyPage(), nil)

	// A lone project file still earns a folder.
	_, err := NewIngestService(mStore, mAssets, mFolders, nil, zap.NewNop().Sugar(), nil).
		UploadBatch(context.Background(), Owner{ID: "u1"}, []BatchFile{batchFile("Track.ptx")}, nil)

	assert.NoError(t, err)
	mFolders.AssertExpectations(t)
}

func TestIngestService_UploadBatch_FolderCreateFailureLeavesFilesUnfiled(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mAssets := new(repoMocks.MockAssetRepository)
	mFolders := new(repoMocks.MockFolderRepository)

	mFolders.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil)
	mAssets.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Asset) bool {
		return a.FolderID == nil
	})).Return(func(_ context.Context, a *model.Asset) *model.Asset { return a }, nil)
	mAssets.On("List", mock.Anything, mock.Anything, mock.Anything).Return(emptyPage(), nil)

	report, err := NewIngestService(mStore, mAssets, mFolders, nil, zap.NewNop().Sugar(), nil).
		UploadBatch(context.Background(), Owner{ID: "u1"}, []BatchFile{batchFile("Idea_1.mp3"), batchFile("Idea_2.mp3")}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 2, report.Completed)
	assert.Empty(t, report.Folders)
}

func TestIngestService_UploadBatch_ProgressMilestones(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mAssets := new(repoMocks.MockAssetRepository)
	mFolders := new(repoMocks.MockFolderRepository)

	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil)
	mAssets.On("Create", mock.Anything, mock.Anything).
		Return(func(_ context.Context, a *model.Asset) *model.Asset { return a }, nil)
	mAssets.On("List", mock.Anything, mock.Anything, mock.Anything).Return(emptyPage(), nil)

	session := NewBatchSession([]string{"one.dat"})
	var events []model.ProgressEvent
	session.OnProgress(func(ev model.ProgressEvent) { events = append(events, ev) })

	_, err := NewIngestService(mStore, mAssets, mFolders, nil, zap.NewNop().Sugar(), nil).
		UploadBatch(context.Background(), Owner{ID: "u1"}, []BatchFile{batchFile("one.dat")}, session)

	assert.NoError(t, err)
	var milestones []int
	for _, ev := range events {
		milestones = append(milestones, ev.Progress)
	}
	assert.Equal(t, []int{25, 50, 100}, milestones)
	assert.Equal(t, model.UploadStatusComplete, events[len(events)-1].Status)
}

func TestIngestService_UploadBatch_CanceledBeforeStart(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mAssets := new(repoMocks.MockAssetRepository)
	mFolders := new(repoMocks.MockFolderRepository)

	mAssets.On("List", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewIngestService(mStore, mAssets, mFolders, nil, zap.NewNop().Sugar(), nil).
		UploadBatch(ctx, Owner{ID: "u1"}, []BatchFile{batchFile("a.dat"), batchFile("b.dat")}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 2, report.Failed)
	for _, it := range report.Items {
		assert.Equal(t, model.UploadStatusError, it.Status)
		assert.Equal(t, "batch canceled", it.Error)
	}
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestService_UploadBatch_EnrichmentHandoff(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mAssets := new(repoMocks.MockAssetRepository)
	mFolders := new(repoMocks.MockFolderRepository)

	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil)
	mAssets.On("Create", mock.Anything, mock.Anything).
		Return(func(_ context.Context, a *model.Asset) *model.Asset { return a }, nil)
	mAssets.On("List", mock.Anything, mock.Anything, mock.Anything).Return(emptyPage(), nil)

	enricher := &fakeEnricher{done: make(chan struct{}, 1)}

	_, err := NewIngestService(mStore, mAssets, mFolders, enricher, zap.NewNop().Sugar(), nil).
		UploadBatch(context.Background(), Owner{ID: "u1"}, []BatchFile{batchFile("vocal.wav"), batchFile("session.ptx")}, nil)

	assert.NoError(t, err)
	select {
	case <-enricher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("enrichment was never handed the audio file")
	}

	enricher.mu.Lock()
	defer enricher.mu.Unlock()
	assert.Len(t, enricher.assets, 1)
	assert.Equal(t, "vocal.wav", enricher.assets[0].FileName)
}

func TestBatchSession_MonotonicAndSettled(t *testing.T) {
	s := NewBatchSession([]string{"x.wav"})

	s.set(0, 50, model.UploadStatusUploading, "", "")
	s.set(0, 25, model.UploadStatusUploading, "", "")
	assert.Equal(t, 50, s.Items()[0].Progress)

	s.set(0, 100, model.UploadStatusComplete, "asset-1", "")
	s.set(0, 0, model.UploadStatusError, "", "too late")
	it := s.Items()[0]
	assert.Equal(t, model.UploadStatusComplete, it.Status)
	assert.Equal(t, "asset-1", it.AssetID)
	assert.Empty(t, it.Error)
}
