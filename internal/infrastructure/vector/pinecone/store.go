package pinecone

import (
	"context"
	"fmt"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
	"github.com/uinjkt-dev/campus-assistant/internal/core/ports"
)

// contentKey is the metadata field holding the row text itself; the rest
// of the metadata is the filterable SOURCE/KATEGORI/... tag set.
const contentKey = "text"

// Store implements the vector index port over a Pinecone index, pairing
// the data-plane client with an embedder for query and document vectors.
type Store struct {
	client   *Client
	embedder ports.Embedder
}

func NewStore(client *Client, embedder ports.Embedder) *Store {
	return &Store{client: client, embedder: embedder}
}

func (s *Store) SimilaritySearch(ctx context.Context, text string, k int, filter map[string]string) ([]domain.Candidate, error) {
	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.client.Query(ctx, vector, k, filter)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(matches))
	for _, m := range matches {
		candidate := domain.Candidate{
			Score:    m.Score,
			Metadata: make(map[string]string, len(m.Metadata)),
		}
		for key, value := range m.Metadata {
			str, ok := value.(string)
			if !ok {
				str = fmt.Sprintf("%v", value)
			}
			if key == contentKey {
				candidate.Content = str
				continue
			}
			candidate.Metadata[key] = str
		}
		out = append(out, candidate)
	}
	return out, nil
}

func (s *Store) AddDocuments(ctx context.Context, docs []domain.CorpusDocument, ids []string) error {
	if len(docs) == 0 {
		return nil
	}
	if len(docs) != len(ids) {
		return fmt.Errorf("documents/ids mismatch: %d vs %d", len(docs), len(ids))
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedding count mismatch: %d vectors for %d documents", len(vectors), len(docs))
	}

	records := make([]vectorRecord, 0, len(docs))
	for i, doc := range docs {
		metadata := make(map[string]any, len(doc.Metadata)+1)
		for key, value := range doc.Metadata {
			metadata[key] = value
		}
		metadata[contentKey] = doc.Content
		records = append(records, vectorRecord{
			ID:       ids[i],
			Values:   vectors[i],
			Metadata: metadata,
		})
	}
	return s.client.Upsert(ctx, records)
}

func (s *Store) DeleteByFilter(ctx context.Context, filter map[string]string) error {
	return s.client.Delete(ctx, filter, false)
}

func (s *Store) DeleteAll(ctx context.Context) error {
	return s.client.Delete(ctx, nil, true)
}
