package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmgine/dmgine/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Request carries one generation call: the assembled prompt plus the
// tier-derived capability parameters.
type Request struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Provider is the generation collaborator: prompt in, message text out.
// Failures surface as errors and are never partially delivered.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// OpenAIClient wraps the OpenAI API client
type OpenAIClient struct {
	client *openai.Client
	logger logger.Logger
}

// NewOpenAIClient creates a new OpenAI-backed provider
func NewOpenAIClient(apiKey string, log logger.Logger) *OpenAIClient {
	if log == nil {
		log = logger.Default()
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		logger: log,
	}
}

// Generate sends a single-message chat completion and returns the trimmed
// message text
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("openai chat completion failed",
			"model", req.Model, "duration", duration, "error", err)
		return "", fmt.Errorf("openai chat failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	message := strings.TrimSpace(resp.Choices[0].Message.Content)
	if message == "" {
		return "", fmt.Errorf("empty message from openai")
	}

	c.logger.Debug("openai chat completed",
		"model", req.Model, "tokens", resp.Usage.TotalTokens, "duration", duration)

	return message, nil
}
