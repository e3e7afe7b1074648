package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaultapi/internal/grouping"
	"vaultapi/internal/model"
	"vaultapi/internal/repository"
)

var (
	ErrSameAsset = errors.New("cannot merge an asset with itself")

	// ErrMergeFailed marks a merge that broke while moving assets. The
	// rollback already ran; the folder no longer exists.
	ErrMergeFailed = errors.New("merge assignment failed")
)

// mergedFolderSuffix marks folders born from a manual merge.
const mergedFolderSuffix = ".track"

// MergeService combines two assets into a freshly created project folder.
type MergeService interface {
	// MergeAssets creates a project folder named after the two assets'
	// common title and moves both into it. On a partial failure the already
	// moved asset is restored and the folder removed.
	MergeAssets(ctx context.Context, sourceID, targetID string) (*model.Folder, error)
}

type mergeService struct {
	assets  repository.AssetRepository
	folders repository.FolderRepository
	logger  *zap.SugaredLogger
}

// NewMergeService constructs a new MergeService.
func NewMergeService(assets repository.AssetRepository, folders repository.FolderRepository, logger *zap.SugaredLogger) MergeService {
	return &mergeService{assets: assets, folders: folders, logger: logger}
}

func (s *mergeService) MergeAssets(ctx context.Context, sourceID, targetID string) (*model.Folder, error) {
	if sourceID == "" || targetID == "" {
		return nil, ErrIDRequired
	}
	if sourceID == targetID {
		return nil, ErrSameAsset
	}

	source, err := s.assets.FindByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	target, err := s.assets.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	name := grouping.MergedProjectName(source.Title, target.Title) + mergedFolderSuffix
	folder, err := s.folders.Create(ctx, &model.Folder{
		ID:        uuid.New().String(),
		Name:      name,
		Color:     model.FolderColorMerge,
		CreatedBy: source.OwnerID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create project folder: %w", err)
	}

	if err := s.assets.SetFolder(ctx, source.ID, &folder.ID); err != nil {
		s.rollbackMerge(ctx, folder.ID, nil)
		return nil, fmt.Errorf("%w: move source asset: %v", ErrMergeFailed, err)
	}
	if err := s.assets.SetFolder(ctx, target.ID, &folder.ID); err != nil {
		s.rollbackMerge(ctx, folder.ID, source)
		return nil, fmt.Errorf("%w: move target asset: %v", ErrMergeFailed, err)
	}

	folder.MemberAssetIDs = []string{source.ID, target.ID}
	s.logger.Infow("assets merged", "folder_id", folder.ID, "name", name, "source_id", source.ID, "target_id", target.ID)
	return folder, nil
}

// rollbackMerge undoes a half-finished merge: the moved asset returns to its
// previous folder and the new folder is deleted. Cleanup failures are logged,
// not returned; the caller's error already describes the merge failure.
func (s *mergeService) rollbackMerge(ctx context.Context, folderID string, moved *model.Asset) {
	if moved != nil {
		if err := s.assets.SetFolder(ctx, moved.ID, moved.FolderID); err != nil {
			s.logger.Errorw("merge rollback: restore asset failed", "asset_id", moved.ID, "error", err)
		}
	}
	if _, err := s.folders.Delete(ctx, folderID); err != nil {
		s.logger.Errorw("merge rollback: delete folder failed", "folder_id", folderID, "error", err)
	}
}

// DragState is the phase of an in-flight drag gesture.
type DragState int

const (
	DragIdle     DragState = iota // nothing in flight
	DragActive                    // a source asset is being dragged
	DragHovering                  // the drag is over a valid target
)

// DragController models the merge gesture as an explicit state machine:
// Idle -> Active (Begin) -> Hovering (Hover) -> merge (Drop). Leaving a
// target cancels the whole gesture. All methods are safe for concurrent use.
type DragController struct {
	mu       sync.Mutex
	state    DragState
	sourceID string
	targetID string
	merger   MergeService
}

// NewDragController constructs a DragController in the Idle state.
func NewDragController(merger MergeService) *DragController {
	return &DragController{merger: merger}
}

// State returns the current phase.
func (c *DragController) State() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin starts a drag for the given source asset. Beginning while a gesture
// is in flight restarts it with the new source.
func (c *DragController) Begin(sourceID string) {
	if sourceID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = DragActive
	c.sourceID = sourceID
	c.targetID = ""
}

// Hover marks the target currently under the drag. Hovering over the source
// itself, or with no drag in flight, is ignored.
func (c *DragController) Hover(targetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == DragIdle || targetID == "" || targetID == c.sourceID {
		return
	}
	c.state = DragHovering
	c.targetID = targetID
}

// Leave cancels the gesture and returns to Idle. It is idempotent and has no
// side effects, so it is safe to fire on every pointer-leave event.
func (c *DragController) Leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = DragIdle
	c.sourceID = ""
	c.targetID = ""
}

// Drop completes the gesture. When hovering over a valid target it runs the
// merge and returns the new folder; otherwise it resets and returns nothing.
// The controller is Idle again when Drop returns, whatever the outcome.
func (c *DragController) Drop(ctx context.Context) (*model.Folder, error) {
	c.mu.Lock()
	state, sourceID, targetID := c.state, c.sourceID, c.targetID
	c.state = DragIdle
	c.sourceID = ""
	c.targetID = ""
	c.mu.Unlock()

	if state != DragHovering {
		return nil, nil
	}
	return c.merger.MergeAssets(ctx, sourceID, targetID)
}
