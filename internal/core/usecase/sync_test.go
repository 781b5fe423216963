package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

type fakeExtractor struct {
	docs []domain.CorpusDocument
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, data io.Reader) ([]domain.CorpusDocument, error) {
	io.Copy(io.Discard, data)
	return f.docs, f.err
}

type recordingIndex struct {
	fakeVectorIndex
	added     []domain.CorpusDocument
	addedIDs  []string
	deleted   []map[string]string
	addErr    error
	deleteErr error
}

func (r *recordingIndex) AddDocuments(_ context.Context, docs []domain.CorpusDocument, ids []string) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.added = append(r.added, docs...)
	r.addedIDs = append(r.addedIDs, ids...)
	return nil
}

func (r *recordingIndex) DeleteByFilter(_ context.Context, filter map[string]string) error {
	r.deleted = append(r.deleted, filter)
	return r.deleteErr
}

func seedUpload(t *testing.T, log *fakeUploadLog, storage *fakeStorage, filename, body string) *domain.UploadRecord {
	t.Helper()
	rec := &domain.UploadRecord{
		ID:          "upload-1",
		Filename:    filename,
		StoragePath: "upload-1_" + filename,
		Status:      domain.UploadStatusUploaded,
	}
	if err := log.CreateUpload(context.Background(), rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	storage.saved[rec.StoragePath] = body
	return rec
}

func TestSyncByIDIndexesWithDeterministicIDs(t *testing.T) {
	log := newFakeUploadLog()
	storage := newFakeStorage()
	seedUpload(t, log, storage, "ukt.csv", "raw sheet")
	index := &recordingIndex{}
	extractor := &fakeExtractor{docs: []domain.CorpusDocument{
		{Content: "row a"},
		{Content: "row b"},
	}}
	uc := NewCorpusSyncUseCase(log, storage, extractor, index)

	rows, err := uc.SyncByID(context.Background(), "upload-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 2 {
		t.Fatalf("rows = %d, want 2", rows)
	}

	if len(index.deleted) != 1 || index.deleted[0][domain.MetaSource] != "ukt.csv" {
		t.Fatalf("stale-document delete filter = %v, want SOURCE=ukt.csv", index.deleted)
	}
	wantIDs := []string{"ukt.csv_0", "ukt.csv_1"}
	if len(index.addedIDs) != 2 || index.addedIDs[0] != wantIDs[0] || index.addedIDs[1] != wantIDs[1] {
		t.Fatalf("document ids = %v, want %v", index.addedIDs, wantIDs)
	}

	final := log.status[len(log.status)-1]
	if final.status != domain.UploadStatusSynced || final.rowCount != 2 {
		t.Fatalf("final status = %+v, want synced with rowCount 2", final)
	}
}

func TestSyncByIDMarksFailedOnExtractError(t *testing.T) {
	log := newFakeUploadLog()
	storage := newFakeStorage()
	seedUpload(t, log, storage, "ukt.csv", "raw sheet")
	extractor := &fakeExtractor{err: errors.New("bad header row")}
	uc := NewCorpusSyncUseCase(log, storage, extractor, &recordingIndex{})

	_, err := uc.SyncByID(context.Background(), "upload-1")
	if err == nil {
		t.Fatalf("expected error")
	}

	final := log.status[len(log.status)-1]
	if final.status != domain.UploadStatusFailed {
		t.Fatalf("final status = %s, want failed", final.status)
	}
	if !strings.Contains(final.errMsg, "bad header row") {
		t.Fatalf("failure message = %q, want extractor error preserved", final.errMsg)
	}
}

func TestSyncByIDRejectsEmptySheet(t *testing.T) {
	log := newFakeUploadLog()
	storage := newFakeStorage()
	seedUpload(t, log, storage, "ukt.csv", "header only")
	uc := NewCorpusSyncUseCase(log, storage, &fakeExtractor{}, &recordingIndex{})

	_, err := uc.SyncByID(context.Background(), "upload-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if final := log.status[len(log.status)-1]; final.status != domain.UploadStatusFailed {
		t.Fatalf("final status = %s, want failed", final.status)
	}
}

func TestSyncByIDToleratesDeleteFailure(t *testing.T) {
	log := newFakeUploadLog()
	storage := newFakeStorage()
	seedUpload(t, log, storage, "ukt.csv", "raw sheet")
	index := &recordingIndex{deleteErr: errors.New("filter unsupported")}
	extractor := &fakeExtractor{docs: []domain.CorpusDocument{{Content: "row"}}}
	uc := NewCorpusSyncUseCase(log, storage, extractor, index)

	if _, err := uc.SyncByID(context.Background(), "upload-1"); err != nil {
		t.Fatalf("delete failure must not abort sync: %v", err)
	}
	if len(index.added) != 1 {
		t.Fatalf("documents were not indexed after delete failure")
	}
}

func TestSyncByIDMarksFailedOnIndexError(t *testing.T) {
	log := newFakeUploadLog()
	storage := newFakeStorage()
	seedUpload(t, log, storage, "ukt.csv", "raw sheet")
	index := &recordingIndex{addErr: errors.New("upsert rejected")}
	extractor := &fakeExtractor{docs: []domain.CorpusDocument{{Content: "row"}}}
	uc := NewCorpusSyncUseCase(log, storage, extractor, index)

	_, err := uc.SyncByID(context.Background(), "upload-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if final := log.status[len(log.status)-1]; final.status != domain.UploadStatusFailed {
		t.Fatalf("final status = %s, want failed", final.status)
	}
}

func TestSyncByIDUnknownUpload(t *testing.T) {
	uc := NewCorpusSyncUseCase(newFakeUploadLog(), newFakeStorage(), &fakeExtractor{}, &recordingIndex{})

	_, err := uc.SyncByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
