package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"vaultapi/internal/model"
	repoMocks "vaultapi/internal/repository/mocks"
)

func openerFor(content []byte) func() (io.ReadSeekCloser, error) {
	return func() (io.ReadSeekCloser, error) {
		return nopReadSeekCloser{bytes.NewReader(content)}, nil
	}
}

func TestEnrichmentService_SkipsNonAudio(t *testing.T) {
	mRepo := new(repoMocks.MockAssetRepository)
	svc := NewEnrichmentService(mRepo, zap.NewNop().Sugar(), nil)

	svc.Enrich(context.Background(), &model.Asset{ID: "a1", FileName: "session.ptx"}, openerFor([]byte("not audio")))

	mRepo.AssertNotCalled(t, "PatchMetadata", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrichmentService_OpenFailureIsSwallowed(t *testing.T) {
	mRepo := new(repoMocks.MockAssetRepository)
	svc := NewEnrichmentService(mRepo, zap.NewNop().Sugar(), nil)

	svc.Enrich(context.Background(), &model.Asset{ID: "a1", FileName: "take.wav"}, func() (io.ReadSeekCloser, error) {
		return nil, errors.New("object gone")
	})

	mRepo.AssertNotCalled(t, "PatchMetadata", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrichmentService_UndecodableAudioIsSwallowed(t *testing.T) {
	mRepo := new(repoMocks.MockAssetRepository)
	svc := NewEnrichmentService(mRepo, zap.NewNop().Sugar(), nil)

	svc.Enrich(context.Background(), &model.Asset{ID: "a1", FileName: "take.wav"}, openerFor([]byte("garbage bytes")))

	mRepo.AssertNotCalled(t, "PatchMetadata", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrichmentService_PatchesFilenameBPM(t *testing.T) {
	mRepo := new(repoMocks.MockAssetRepository)
	svc := NewEnrichmentService(mRepo, zap.NewNop().Sugar(), nil)

	// .flac content is not container-probed, so the filename BPM is the whole
	// patch and must still land.
	mRepo.On("PatchMetadata", mock.Anything, "a1", mock.MatchedBy(func(m model.AudioMetadata) bool {
		return m.BPM != nil && *m.BPM == 140 && m.Duration == nil
	})).Return(nil)

	svc.Enrich(context.Background(), &model.Asset{ID: "a1", FileName: "anthem_140bpm.flac"}, openerFor([]byte("xx")))

	mRepo.AssertExpectations(t)
}

func TestEnrichmentService_PatchFailureIsSwallowed(t *testing.T) {
	mRepo := new(repoMocks.MockAssetRepository)
	svc := NewEnrichmentService(mRepo, zap.NewNop().Sugar(), nil)

	mRepo.On("PatchMetadata", mock.Anything, "a1", mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		svc.Enrich(context.Background(), &model.Asset{ID: "a1", FileName: "anthem_90bpm.flac"}, openerFor([]byte("xx")))
	})
}
