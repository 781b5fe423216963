package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client speaks the Pinecone data-plane REST API for one index host.
// Every request authenticates with the Api-Key header.
type Client struct {
	host       string
	apiKey     string
	namespace  string
	httpClient *http.Client
}

func NewClient(host, apiKey, namespace string) *Client {
	return &Client{
		host:       strings.TrimRight(host, "/"),
		apiKey:     apiKey,
		namespace:  namespace,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type vectorRecord struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type queryMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

func (c *Client) Query(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]queryMatch, error) {
	reqBody := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
		"namespace":       c.namespace,
	}
	if f := equalityFilter(filter); f != nil {
		reqBody["filter"] = f
	}

	var response struct {
		Matches []queryMatch `json:"matches"`
	}
	if err := c.postJSON(ctx, "/query", reqBody, &response, "query"); err != nil {
		return nil, err
	}
	return response.Matches, nil
}

func (c *Client) Upsert(ctx context.Context, records []vectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	reqBody := map[string]any{
		"vectors":   records,
		"namespace": c.namespace,
	}
	return c.postJSON(ctx, "/vectors/upsert", reqBody, nil, "upsert")
}

func (c *Client) Delete(ctx context.Context, filter map[string]string, deleteAll bool) error {
	reqBody := map[string]any{
		"namespace": c.namespace,
	}
	if deleteAll {
		reqBody["deleteAll"] = true
	} else if f := equalityFilter(filter); f != nil {
		reqBody["filter"] = f
	} else {
		return nil
	}
	return c.postJSON(ctx, "/vectors/delete", reqBody, nil, "delete")
}

// equalityFilter renders {"KEY": {"$eq": "value"}} clauses, the only
// filter shape the retrieval layer uses.
func equalityFilter(filter map[string]string) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	out := make(map[string]any, len(filter))
	for key, value := range filter {
		out[key] = map[string]any{"$eq": value}
	}
	return out
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			return fmt.Errorf("pinecone %s status: %s: %s", operation, resp.Status, msg)
		}
		return fmt.Errorf("pinecone %s status: %s", operation, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
