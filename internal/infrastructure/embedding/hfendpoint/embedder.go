package hfendpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/resilience"
)

// Embedder calls a HuggingFace Inference API feature-extraction endpoint.
// One request embeds a batch of texts and returns one vector per text.
type Embedder struct {
	endpointURL string
	apiKey      string
	httpClient  *http.Client
	exec        *resilience.Executor
}

func New(endpointURL, apiKey string, exec *resilience.Executor) *Embedder {
	return &Embedder{
		endpointURL: strings.TrimRight(endpointURL, "/"),
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		exec:        exec,
	}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(map[string]any{"inputs": texts})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	var vectors [][]float32
	err = e.exec.Run(ctx, "hf_embed", classifyEmbedError, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpointURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create embed request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+e.apiKey)

		resp, err := e.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("hf embed request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &embedStatusError{
				statusCode: resp.StatusCode,
				status:     resp.Status,
				body:       strings.TrimSpace(string(raw)),
			}
		}
		if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
			return fmt.Errorf("decode embed response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("hf embed: got %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("hf embed: empty embedding result")
	}
	return vectors[0], nil
}

type embedStatusError struct {
	statusCode int
	status     string
	body       string
}

func (e *embedStatusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("hf embed status: %s", e.status)
	}
	return fmt.Sprintf("hf embed status: %s: %s", e.status, e.body)
}

func classifyEmbedError(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{Retry: false, CountAsFailure: false}
	}

	var statusErr *embedStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.statusCode {
		// 503 covers cold model loading on the inference API.
		case http.StatusTooManyRequests, http.StatusServiceUnavailable,
			http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
			return resilience.Verdict{Retry: true, CountAsFailure: true}
		default:
			return resilience.Verdict{Retry: false, CountAsFailure: false}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Verdict{Retry: true, CountAsFailure: true}
	}
	return resilience.Verdict{Retry: false, CountAsFailure: true}
}
