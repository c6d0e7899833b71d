// Package groq implements the model engine against Groq's OpenAI-compatible API.
package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jywlabs/analyst/internal/engine"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is used when neither config nor GROQ_MODEL name one.
	DefaultModel = "llama-3.3-70b-versatile"
)

func init() {
	engine.RegisterEngine("groq", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg)
	})
}

// Engine calls chat completions on an OpenAI-compatible endpoint.
type Engine struct {
	client openai.Client
	model  string
}

// New creates a Groq engine. An API key is required.
func New(cfg engine.Config) (*Engine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("GROQ_API_KEY not found in environment variables")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// Retries are handled by the stage runner.
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	return &Engine{client: client, model: model}, nil
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "groq"
}

// Label returns the engine description for reports.
func (e *Engine) Label() string {
	return fmt.Sprintf("Groq LLM (%s)", e.model)
}

// Generate sends the prompt as a single user message.
func (e *Engine) Generate(ctx context.Context, req engine.Request) (string, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("groq chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
