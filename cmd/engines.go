package cmd

import (
	"github.com/jywlabs/analyst/internal/config"
	"github.com/jywlabs/analyst/internal/engine"

	// Register available engines.
	_ "github.com/jywlabs/analyst/internal/engine/demo"
	_ "github.com/jywlabs/analyst/internal/engine/gemini"
	_ "github.com/jywlabs/analyst/internal/engine/groq"
)

// newEngine creates the configured engine with its provider secrets.
func newEngine(cfg *config.Config, secrets config.Secrets) (engine.Engine, error) {
	return engine.New(cfg.Engine, cfg.EngineConfig(secrets))
}
