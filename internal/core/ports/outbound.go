package ports

import (
	"context"
	"io"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

// ChatModel invokes one named chat model with an ordered message list and
// returns its raw text output. Non-JSON output on planner/judge paths is a
// caller concern, never an Invoke error.
type ChatModel interface {
	Invoke(ctx context.Context, model string, messages []domain.ChatTurn) (string, error)
}

// Embedder builds vectors for document rows and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the similarity-search boundary. Candidate scores are
// cosine similarity as reported by the index: higher is better, and the
// ranker's additive bonuses build on that convention.
type VectorIndex interface {
	SimilaritySearch(ctx context.Context, text string, k int, filter map[string]string) ([]domain.Candidate, error)
	AddDocuments(ctx context.Context, docs []domain.CorpusDocument, ids []string) error
	DeleteByFilter(ctx context.Context, filter map[string]string) error
	DeleteAll(ctx context.Context) error
}

// ObjectStorage stores uploaded corpus sheets.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue decouples corpus upload from indexing.
type MessageQueue interface {
	PublishCorpusUploaded(ctx context.Context, uploadID string) error
	SubscribeCorpusUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// RowExtractor turns an uploaded sheet into metadata-tagged documents.
type RowExtractor interface {
	Extract(ctx context.Context, filename string, data io.Reader) ([]domain.CorpusDocument, error)
}

// UploadLogStore persists corpus upload/sync history.
type UploadLogStore interface {
	CreateUpload(ctx context.Context, rec *domain.UploadRecord) error
	GetUploadByID(ctx context.Context, id string) (*domain.UploadRecord, error)
	UpdateUploadStatus(ctx context.Context, id string, status domain.UploadStatus, rowCount int, errMessage string) error
	ListUploads(ctx context.Context, limit int) ([]domain.UploadRecord, error)
}

// TicketStore persists live-chat escalation tickets.
type TicketStore interface {
	CreateTicket(ctx context.Context, userID, subject string) (*domain.Ticket, error)
	CloseTicket(ctx context.Context, ticketID string) error
	ActiveTicket(ctx context.Context, userID string) (*domain.Ticket, error)
}

// SessionStore tracks the AI/HUMAN routing mode per phone number.
// GetMode reports justReset=true when an idle HUMAN session was flipped
// back to AI by the timeout.
type SessionStore interface {
	GetMode(ctx context.Context, phone string) (mode domain.SessionMode, justReset bool, err error)
	SetMode(ctx context.Context, phone string, mode domain.SessionMode) error
	Touch(ctx context.Context, phone, message, sender string) error
}
