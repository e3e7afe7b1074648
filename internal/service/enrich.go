package service

import (
	"context"
	"io"

	"go.uber.org/zap"

	"vaultapi/internal/audio"
	"vaultapi/internal/grouping"
	"vaultapi/internal/model"
	"vaultapi/internal/repository"
)

// EnrichmentService inspects uploaded audio content and backfills technical
// metadata (duration, sample rate, BPM, key, genre) after the upload has
// already been acknowledged. Enrichment never fails an upload: any error is
// logged and the asset simply keeps its sparse metadata.
type EnrichmentService interface {
	Enrich(ctx context.Context, asset *model.Asset, open func() (io.ReadSeekCloser, error))
}

type enrichmentService struct {
	repo    repository.AssetRepository
	logger  *zap.SugaredLogger
	metrics *Metrics
}

// NewEnrichmentService constructs a new EnrichmentService.
func NewEnrichmentService(repo repository.AssetRepository, logger *zap.SugaredLogger, metrics *Metrics) EnrichmentService {
	return &enrichmentService{repo: repo, logger: logger, metrics: metrics}
}

func (s *enrichmentService) Enrich(ctx context.Context, asset *model.Asset, open func() (io.ReadSeekCloser, error)) {
	if asset == nil || open == nil {
		return
	}
	if !grouping.IsAudioFile(asset.FileName) {
		s.metrics.recordEnrichment("skipped")
		return
	}

	rc, err := open()
	if err != nil {
		s.logger.Warnw("enrichment: open content failed", "asset_id", asset.ID, "error", err)
		s.metrics.recordEnrichment("failure")
		return
	}
	defer rc.Close()

	meta, err := audio.Probe(asset.FileName, rc)
	if err != nil && meta.Empty() {
		s.logger.Warnw("enrichment: audio probe failed", "asset_id", asset.ID, "file_name", asset.FileName, "error", err)
		s.metrics.recordEnrichment("failure")
		return
	}
	if meta.Empty() {
		s.metrics.recordEnrichment("skipped")
		return
	}

	if err := s.repo.PatchMetadata(ctx, asset.ID, meta); err != nil {
		s.logger.Warnw("enrichment: metadata update failed", "asset_id", asset.ID, "error", err)
		s.metrics.recordEnrichment("failure")
		return
	}
	s.metrics.recordEnrichment("success")
}
