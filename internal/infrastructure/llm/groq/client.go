package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
	"github.com/uinjkt-dev/campus-assistant/internal/infrastructure/resilience"
)

// Client talks to the Groq OpenAI-compatible chat completions API. The
// model name is chosen per call, so one client serves the planner,
// generator, fallback, and judge roles.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL, apiKey string, exec *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		exec:       exec,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Invoke(ctx context.Context, model string, messages []domain.ChatTurn) (string, error) {
	if model == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "groq invoke", errors.New("model name is required"))
	}

	request := chatRequest{
		Model:       model,
		Messages:    make([]chatMessage, 0, len(messages)),
		Temperature: 0.1,
	}
	for _, turn := range messages {
		request.Messages = append(request.Messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}

	var response chatResponse
	err := c.exec.Run(ctx, "groq_chat", classifyGroqError, func(ctx context.Context) error {
		return c.postJSON(ctx, "/chat/completions", request, &response, "chat")
	})
	if err != nil {
		return "", wrapTemporaryIfNeeded("groq chat", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("groq chat: response carried no choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
