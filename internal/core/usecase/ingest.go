package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
	"github.com/uinjkt-dev/campus-assistant/internal/core/ports"
)

const uploadListLimit = 50

// CorpusIngestUseCase accepts tariff/program sheets, stores them, and
// hands indexing to the sync worker through the queue.
type CorpusIngestUseCase struct {
	log     ports.UploadLogStore
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewCorpusIngestUseCase(log ports.UploadLogStore, storage ports.ObjectStorage, queue ports.MessageQueue) *CorpusIngestUseCase {
	return &CorpusIngestUseCase{
		log:     log,
		storage: storage,
		queue:   queue,
	}
}

func (uc *CorpusIngestUseCase) Upload(ctx context.Context, filename string, body io.Reader) (*domain.UploadRecord, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "corpus upload",
			fmt.Errorf("unsupported file type: %s", filepath.Ext(filename)))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save uploaded sheet: %w", err)
	}

	rec := &domain.UploadRecord{
		ID:          id,
		Filename:    filename,
		StoragePath: storageKey,
		Status:      domain.UploadStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.log.CreateUpload(ctx, rec); err != nil {
		return nil, fmt.Errorf("create upload record: %w", err)
	}

	if err := uc.queue.PublishCorpusUploaded(ctx, rec.ID); err != nil {
		return nil, fmt.Errorf("publish sync event: %w", err)
	}
	return rec, nil
}

func (uc *CorpusIngestUseCase) ListUploads(ctx context.Context) ([]domain.UploadRecord, error) {
	records, err := uc.log.ListUploads(ctx, uploadListLimit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return records, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "sheet.csv"
	}
	return base
}
