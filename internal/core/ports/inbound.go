package ports

import (
	"context"
	"io"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

// ChatService is the inbound contract for the retrieval/generation
// pipeline. AnswerQuery degrades internally (default plan, skipped
// targets, fallback model, technical-difficulty answer) and only returns
// an error for invalid input.
type ChatService interface {
	AnswerQuery(ctx context.Context, query string, history []domain.ChatTurn) (*domain.ChatResult, error)
}

// AnswerEvaluator audits a generated answer against its retrieved
// context. It never fails: parse and invocation errors degrade to the
// zero-score sentinel.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, query, answer, contextText string) domain.Evaluation
}

// CorpusIngestor accepts corpus sheet uploads.
type CorpusIngestor interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*domain.UploadRecord, error)
	ListUploads(ctx context.Context) ([]domain.UploadRecord, error)
}

// CorpusSyncProcessor indexes an uploaded sheet asynchronously and
// reports the number of rows written to the index.
type CorpusSyncProcessor interface {
	SyncByID(ctx context.Context, uploadID string) (int, error)
}
