package engine

import (
	"context"
	"time"

	"github.com/jywlabs/analyst/internal/record"
)

// Request is a single text-generation call made on behalf of a stage.
type Request struct {
	Stage       record.Stage // Stage issuing the call
	Prompt      string       // Fully rendered prompt
	Temperature float64      // Sampling temperature for this stage
}

// Engine is the model invocation collaborator.
type Engine interface {
	// Name returns the engine identifier (e.g., "groq", "gemini", "demo")
	Name() string

	// Label returns a human-readable description used in report methodology.
	Label() string

	// Generate sends the prompt and returns the raw model text.
	Generate(ctx context.Context, req Request) (string, error)
}

// Config carries provider settings resolved from the config file and environment.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // Override endpoint (tests, proxies)
}

// DefaultTimeout bounds a single model call when the caller sets none.
const DefaultTimeout = 60 * time.Second
