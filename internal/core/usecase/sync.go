package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
	"github.com/uinjkt-dev/campus-assistant/internal/core/ports"
)

// CorpusSyncUseCase indexes an uploaded sheet: extract rows, drop stale
// documents from the same source, upsert with deterministic IDs so
// re-uploading a sheet stays idempotent.
type CorpusSyncUseCase struct {
	log       ports.UploadLogStore
	storage   ports.ObjectStorage
	extractor ports.RowExtractor
	index     ports.VectorIndex
}

func NewCorpusSyncUseCase(log ports.UploadLogStore, storage ports.ObjectStorage, extractor ports.RowExtractor, index ports.VectorIndex) *CorpusSyncUseCase {
	return &CorpusSyncUseCase{
		log:       log,
		storage:   storage,
		extractor: extractor,
		index:     index,
	}
}

// SyncByID indexes the upload and reports how many rows were written.
func (uc *CorpusSyncUseCase) SyncByID(ctx context.Context, uploadID string) (int, error) {
	rec, err := uc.log.GetUploadByID(ctx, uploadID)
	if err != nil {
		return 0, fmt.Errorf("fetch upload record: %w", err)
	}

	if err := uc.log.UpdateUploadStatus(ctx, rec.ID, domain.UploadStatusSyncing, 0, ""); err != nil {
		return 0, fmt.Errorf("set status=syncing: %w", err)
	}

	rowCount, err := uc.sync(ctx, rec)
	if err != nil {
		if failErr := uc.log.UpdateUploadStatus(ctx, rec.ID, domain.UploadStatusFailed, 0, err.Error()); failErr != nil {
			return 0, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return 0, err
	}

	if err := uc.log.UpdateUploadStatus(ctx, rec.ID, domain.UploadStatusSynced, rowCount, ""); err != nil {
		return 0, fmt.Errorf("set status=synced: %w", err)
	}
	return rowCount, nil
}

func (uc *CorpusSyncUseCase) sync(ctx context.Context, rec *domain.UploadRecord) (int, error) {
	body, err := uc.storage.Open(ctx, rec.StoragePath)
	if err != nil {
		return 0, fmt.Errorf("open stored sheet: %w", err)
	}
	defer body.Close()

	docs, err := uc.extractor.Extract(ctx, rec.Filename, body)
	if err != nil {
		return 0, fmt.Errorf("extract rows: %w", err)
	}
	if len(docs) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "extract rows", errors.New("sheet produced zero rows"))
	}

	// Best effort: a missing source filter on a fresh index is fine.
	if err := uc.index.DeleteByFilter(ctx, map[string]string{domain.MetaSource: rec.Filename}); err != nil {
		slog.Warn("delete_stale_documents_failed", "source", rec.Filename, "error", err)
	}

	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = fmt.Sprintf("%s_%d", rec.Filename, i)
	}
	if err := uc.index.AddDocuments(ctx, docs, ids); err != nil {
		return 0, fmt.Errorf("index documents: %w", err)
	}
	return len(docs), nil
}
