// Package gemini implements the model engine with Google's GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/jywlabs/analyst/internal/engine"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

func init() {
	engine.RegisterEngine("gemini", func(cfg engine.Config) (engine.Engine, error) {
		return New(context.Background(), cfg)
	})
}

// Engine generates text with the Gemini API.
type Engine struct {
	client *genai.Client
	model  string
}

// New creates a Gemini engine. An API key is required.
func New(ctx context.Context, cfg engine.Config) (*Engine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("GEMINI_API_KEY not found in environment variables")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Engine{client: client, model: model}, nil
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "gemini"
}

// Label returns the engine description for reports.
func (e *Engine) Label() string {
	return fmt.Sprintf("Gemini LLM (%s)", e.model)
}

// Generate sends the prompt as a single user turn.
func (e *Engine) Generate(ctx context.Context, req engine.Request) (string, error) {
	temp := float32(req.Temperature)
	resp, err := e.client.Models.GenerateContent(ctx, e.model,
		genai.Text(req.Prompt),
		&genai.GenerateContentConfig{Temperature: &temp},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}
