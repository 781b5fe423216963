package domain

import "time"

// Metadata keys shared by the corpus extractor and the retrieval filters.
const (
	MetaSource     = "SOURCE"
	MetaKategori   = "KATEGORI"
	MetaJenjang    = "JENJANG"
	MetaTipeData   = "TIPE_DATA"
	MetaProdi      = "JURUSAN_PROGRAM_STUDI"
	MetaUploadedAt = "UPLOADED_AT"
)

// Category values used by the intent-derived search filter.
const (
	KategoriKeuangan = "KEUANGAN"
	KategoriAkademik = "AKADEMIK"
)

// CorpusDocument is one indexable row extracted from an uploaded sheet.
type CorpusDocument struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

type UploadStatus string

const (
	UploadStatusUploaded UploadStatus = "uploaded"
	UploadStatusSyncing  UploadStatus = "syncing"
	UploadStatusSynced   UploadStatus = "synced"
	UploadStatusFailed   UploadStatus = "failed"
)

// UploadRecord tracks one corpus sheet through upload and sync.
type UploadRecord struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	StoragePath string       `json:"storage_path"`
	Status      UploadStatus `json:"status"`
	RowCount    int          `json:"row_count"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
