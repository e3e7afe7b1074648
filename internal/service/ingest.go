package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaultapi/internal/grouping"
	"vaultapi/internal/model"
	"vaultapi/internal/repository"
	"vaultapi/internal/storage"
)

// uploadChunkSize is how many files upload concurrently. Chunks run strictly
// in order; within a chunk the files race.
const uploadChunkSize = 5

// Progress milestones for one file. 0 is queued; the gaps between milestones
// are intentional so a consumer can render movement without byte counting.
const (
	progressBuilt = 25  // upload request assembled
	progressSent  = 50  // content handed to storage
	progressDone  = 100 // persisted and acknowledged
)

// refreshLimit bounds the post-batch asset listing attached to the report.
const refreshLimit = 200

var ErrNoFiles = errors.New("no files in batch")

// Owner identifies the uploading user. Roles feed the kind classifier.
type Owner struct {
	ID    string
	Roles []string
}

// BatchFile is one file of an upload batch. Open must return a fresh reader
// on every call; the scheduler opens once for the upload and the enrichment
// worker opens again for probing.
type BatchFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadSeekCloser, error)
}

// UploadReport is the settled outcome of a batch. The batch as a whole never
// fails because one file does; per-file errors live on the queue items.
type UploadReport struct {
	Items     []model.UploadQueueItem `json:"items"`
	Folders   []model.Folder          `json:"folders_created"`
	Assets    []model.Asset           `json:"assets"`
	Completed int                     `json:"completed"`
	Failed    int                     `json:"failed"`
}

// BatchSession tracks per-file progress for one batch and fans transitions
// out to an optional observer. All methods are safe for concurrent use.
type BatchSession struct {
	mu     sync.Mutex
	items  []model.UploadQueueItem
	notify func(model.ProgressEvent)
}

// NewBatchSession seeds a session with one queued item per filename.
func NewBatchSession(fileNames []string) *BatchSession {
	items := make([]model.UploadQueueItem, len(fileNames))
	for i, name := range fileNames {
		items[i] = model.UploadQueueItem{FileName: name, Status: model.UploadStatusUploading}
	}
	return &BatchSession{items: items}
}

// OnProgress registers the observer called on every item transition. The
// callback runs on the uploading goroutine and must return quickly.
func (s *BatchSession) OnProgress(fn func(model.ProgressEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// Items returns a snapshot of the queue.
func (s *BatchSession) Items() []model.UploadQueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.UploadQueueItem, len(s.items))
	copy(out, s.items)
	return out
}

// Counts returns how many items have settled either way.
func (s *BatchSession) Counts() (completed, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		switch it.Status {
		case model.UploadStatusComplete:
			completed++
		case model.UploadStatusError:
			failed++
		}
	}
	return completed, failed
}

// set records a transition. Progress never moves backwards and a settled
// item (complete or error) never changes again.
func (s *BatchSession) set(i, progress int, status model.UploadStatus, assetID, errMsg string) {
	s.mu.Lock()
	if i < 0 || i >= len(s.items) {
		s.mu.Unlock()
		return
	}
	it := &s.items[i]
	if it.Status == model.UploadStatusComplete || it.Status == model.UploadStatusError {
		s.mu.Unlock()
		return
	}
	if progress < it.Progress {
		progress = it.Progress
	}
	it.Progress = progress
	it.Status = status
	if assetID != "" {
		it.AssetID = assetID
	}
	if errMsg != "" {
		it.Error = errMsg
	}
	ev := model.ProgressEvent{Index: i, FileName: it.FileName, Progress: it.Progress, Status: it.Status}
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(ev)
	}
}

// IngestService runs the full batch upload pipeline: plan folders from the
// filenames, then upload in chunks, persist, and hand audio files to the
// enrichment worker.
type IngestService interface {
	// UploadBatch processes the files and returns once every item has
	// settled. session may be nil; pass one to observe progress events.
	UploadBatch(ctx context.Context, owner Owner, files []BatchFile, session *BatchSession) (*UploadReport, error)
}

type ingestService struct {
	store    storage.Storage
	assets   repository.AssetRepository
	folders  repository.FolderRepository
	enricher EnrichmentService
	logger   *zap.SugaredLogger
	metrics  *Metrics
}

// NewIngestService constructs a new IngestService. enricher may be nil to
// disable post-upload metadata enrichment.
func NewIngestService(
	store storage.Storage,
	assets repository.AssetRepository,
	folders repository.FolderRepository,
	enricher EnrichmentService,
	logger *zap.SugaredLogger,
	metrics *Metrics,
) IngestService {
	return &ingestService{
		store:    store,
		assets:   assets,
		folders:  folders,
		enricher: enricher,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *ingestService) UploadBatch(ctx context.Context, owner Owner, files []BatchFile, session *BatchSession) (*UploadReport, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	if session == nil {
		session = NewBatchSession(names)
	}

	report := &UploadReport{}

	// Decision phase: the grouping plan is computed once, before any side
	// effect, so a mid-batch failure cannot change which folders exist.
	plan := grouping.BuildPlan(names)
	folderIDs := make(map[string]string, len(plan.Folders))
	for _, spec := range plan.Folders {
		color := model.FolderColorAuto
		if spec.Project {
			color = model.FolderColorProject
		}
		folder, err := s.folders.Create(ctx, &model.Folder{
			ID:        uuid.New().String(),
			Name:      spec.BaseName,
			Color:     color,
			CreatedBy: owner.ID,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			// The group's files still upload, just unfiled.
			s.logger.Warnw("batch folder create failed", "name", spec.BaseName, "error", err)
			continue
		}
		folderIDs[spec.BaseName] = folder.ID
		report.Folders = append(report.Folders, *folder)
	}

	for start := 0; start < len(files); start += uploadChunkSize {
		if err := ctx.Err(); err != nil {
			for i := start; i < len(files); i++ {
				session.set(i, 0, model.UploadStatusError, "", "batch canceled")
				s.metrics.recordUpload("canceled")
			}
			break
		}

		end := start + uploadChunkSize
		if end > len(files) {
			end = len(files)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			var folderID *string
			if base, ok := plan.Assignment[files[i].Name]; ok {
				if id, ok := folderIDs[base]; ok {
					fid := id
					folderID = &fid
				}
			}

			wg.Add(1)
			go func(i int, bf BatchFile, folderID *string) {
				defer wg.Done()
				s.uploadOne(ctx, owner, bf, folderID, session, i)
			}(i, files[i], folderID)
		}
		wg.Wait()
	}

	// Refresh the caller's view of the library. A listing failure does not
	// fail the batch; the uploads already settled.
	listed, err := s.assets.List(ctx, repository.AssetFilter{OwnerID: owner.ID}, repository.PageQuery{Limit: refreshLimit})
	if err != nil {
		s.logger.Warnw("post-batch asset refresh failed", "owner_id", owner.ID, "error", err)
	} else {
		report.Assets = listed.Items
	}

	report.Items = session.Items()
	report.Completed, report.Failed = session.Counts()
	return report, nil
}

// uploadOne runs the per-file pipeline: put content, insert the record, then
// kick off enrichment. A failed insert rolls the stored object back.
func (s *ingestService) uploadOne(ctx context.Context, owner Owner, bf BatchFile, folderID *string, session *BatchSession, i int) {
	if bf.Name == "" || bf.Open == nil {
		session.set(i, 0, model.UploadStatusError, "", "malformed file entry")
		s.metrics.recordUpload("error")
		return
	}

	key := fmt.Sprintf("assets/%s/%s%s", owner.ID, uuid.New().String(), filepath.Ext(bf.Name))
	session.set(i, progressBuilt, model.UploadStatusUploading, "", "")

	rc, err := bf.Open()
	if err != nil {
		session.set(i, 0, model.UploadStatusError, "", fmt.Sprintf("open content: %v", err))
		s.metrics.recordUpload("error")
		return
	}
	defer rc.Close()

	session.set(i, progressSent, model.UploadStatusUploading, "", "")
	if _, err := s.store.Put(ctx, key, rc, storage.PutObjectOptions{
		Size:        bf.Size,
		ContentType: bf.ContentType,
		Metadata:    map[string]string{"original-filename": bf.Name},
	}); err != nil {
		s.logger.Warnw("asset upload failed", "file_name", bf.Name, "error", err)
		session.set(i, 0, model.UploadStatusError, "", fmt.Sprintf("store content: %v", err))
		s.metrics.recordUpload("error")
		return
	}

	asset := &model.Asset{
		ID:          uuid.New().String(),
		Title:       bf.Name,
		FileName:    bf.Name,
		SizeBytes:   bf.Size,
		ContentType: bf.ContentType,
		Kind:        grouping.ClassifyKind(bf.Name, owner.Roles),
		StorageKey:  key,
		FolderID:    folderID,
		OwnerID:     owner.ID,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.assets.Create(ctx, asset)
	if err != nil {
		s.logger.Errorw("asset insert failed", "file_name", bf.Name, "storage_key", key, "error", err)
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Errorw("orphaned object cleanup failed", "storage_key", key, "error", delErr)
		}
		session.set(i, 0, model.UploadStatusError, "", fmt.Sprintf("persist asset: %v", err))
		s.metrics.recordUpload("error")
		return
	}

	session.set(i, progressDone, model.UploadStatusComplete, stored.ID, "")
	s.metrics.recordUpload("complete")

	if s.enricher != nil && grouping.IsAudioFile(stored.FileName) {
		// Fire and forget. Enrichment outcome never affects the upload, and
		// it must survive the request context ending.
		go s.enricher.Enrich(context.WithoutCancel(ctx), stored, bf.Open)
	}
}
