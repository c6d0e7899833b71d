// Package config loads .analyst/config.yaml and the provider secrets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jywlabs/analyst/internal/engine"
	"github.com/jywlabs/analyst/internal/template"
)

// Temperatures are the per-stage sampling temperatures.
type Temperatures struct {
	Plan     float64 `yaml:"plan"`
	Research float64 `yaml:"research"`
	Critique float64 `yaml:"critique"`
}

// Config is the effective configuration after defaults are merged.
type Config struct {
	Engine              string        `yaml:"engine"`
	Model               string        `yaml:"model"`
	OutputDir           string        `yaml:"outputDir"`
	MaxSearchResults    int           `yaml:"maxSearchResults"`
	RecencyToken        string        `yaml:"recencyToken"`
	SearchRatePerSecond float64       `yaml:"searchRatePerSecond"`
	CallTimeout         time.Duration `yaml:"callTimeout"`
	Concurrency         int           `yaml:"concurrency"`
	MaxRetries          int           `yaml:"maxRetries"`
	RetryDelay          time.Duration `yaml:"retryDelay"`
	Temperatures        Temperatures  `yaml:"temperatures"`
	History             string        `yaml:"history"`
	MetricsFile         string        `yaml:"metricsFile"`
}

// rawTemperatures distinguishes a missing key from an explicit zero.
type rawTemperatures struct {
	Plan     *float64 `yaml:"plan"`
	Research *float64 `yaml:"research"`
	Critique *float64 `yaml:"critique"`
}

// rawConfig is used for YAML unmarshaling to distinguish missing keys from explicit empty values.
type rawConfig struct {
	Engine              *string          `yaml:"engine"`
	Model               *string          `yaml:"model"`
	OutputDir           *string          `yaml:"outputDir"`
	MaxSearchResults    *int             `yaml:"maxSearchResults"`
	RecencyToken        *string          `yaml:"recencyToken"`
	SearchRatePerSecond *float64         `yaml:"searchRatePerSecond"`
	CallTimeout         *string          `yaml:"callTimeout"`
	Concurrency         *int             `yaml:"concurrency"`
	MaxRetries          *int             `yaml:"maxRetries"`
	RetryDelay          *string          `yaml:"retryDelay"`
	Temperatures        *rawTemperatures `yaml:"temperatures"`
	History             *string          `yaml:"history"`
	MetricsFile         *string          `yaml:"metricsFile"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine:           "groq",
		OutputDir:        "outputs",
		MaxSearchResults: 5,
		RecencyToken:     "2024",
		CallTimeout:      engine.DefaultTimeout,
		Concurrency:      1,
		MaxRetries:       2,
		RetryDelay:       2 * time.Second,
		Temperatures:     Temperatures{Plan: 0.3, Research: 0.7, Critique: 0.4},
	}
}

// Validate checks that the Config fields are valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Engine) == "" {
		return errors.New("engine must not be empty")
	}
	if c.OutputDir == "" {
		return errors.New("outputDir must not be empty")
	}
	if c.MaxSearchResults <= 0 {
		return errors.New("maxSearchResults must be greater than 0")
	}
	if c.SearchRatePerSecond < 0 {
		return errors.New("searchRatePerSecond must not be negative")
	}
	if c.CallTimeout < 0 {
		return errors.New("callTimeout must not be negative")
	}
	if c.Concurrency <= 0 {
		return errors.New("concurrency must be greater than 0")
	}
	if c.MaxRetries < 0 {
		return errors.New("maxRetries must not be negative")
	}
	for name, v := range map[string]float64{
		"plan":     c.Temperatures.Plan,
		"research": c.Temperatures.Research,
		"critique": c.Temperatures.Critique,
	} {
		if v < 0 || v > 2 {
			return fmt.Errorf("temperatures.%s must be between 0 and 2, got %g", name, v)
		}
	}
	return nil
}

// Path returns the config file location for a project directory.
func Path(dir string) string {
	return filepath.Join(dir, template.AnalystDir, template.ConfigFile)
}

// Load reads .analyst/config.yaml in dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", Path(dir), err)
	}
	if err := merge(&cfg, raw); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge applies every key set in raw over cfg.
func merge(cfg *Config, raw rawConfig) error {
	setString(&cfg.Engine, raw.Engine)
	setString(&cfg.Model, raw.Model)
	setString(&cfg.OutputDir, raw.OutputDir)
	setString(&cfg.RecencyToken, raw.RecencyToken)
	setString(&cfg.History, raw.History)
	setString(&cfg.MetricsFile, raw.MetricsFile)

	if raw.MaxSearchResults != nil {
		cfg.MaxSearchResults = *raw.MaxSearchResults
	}
	if raw.SearchRatePerSecond != nil {
		cfg.SearchRatePerSecond = *raw.SearchRatePerSecond
	}
	if raw.Concurrency != nil {
		cfg.Concurrency = *raw.Concurrency
	}
	if raw.MaxRetries != nil {
		cfg.MaxRetries = *raw.MaxRetries
	}

	if raw.CallTimeout != nil {
		d, err := time.ParseDuration(*raw.CallTimeout)
		if err != nil {
			return fmt.Errorf("invalid callTimeout %q: %w", *raw.CallTimeout, err)
		}
		cfg.CallTimeout = d
	}
	if raw.RetryDelay != nil {
		d, err := time.ParseDuration(*raw.RetryDelay)
		if err != nil {
			return fmt.Errorf("invalid retryDelay %q: %w", *raw.RetryDelay, err)
		}
		cfg.RetryDelay = d
	}

	if t := raw.Temperatures; t != nil {
		if t.Plan != nil {
			cfg.Temperatures.Plan = *t.Plan
		}
		if t.Research != nil {
			cfg.Temperatures.Research = *t.Research
		}
		if t.Critique != nil {
			cfg.Temperatures.Critique = *t.Critique
		}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Secrets are provider credentials read from the environment.
type Secrets struct {
	GroqAPIKey   string
	GroqModel    string
	GeminiAPIKey string
	SerpAPIKey   string
}

// LoadSecrets loads dir/.env when present, without overriding variables
// already set, and reads the provider keys from the environment.
func LoadSecrets(dir string) (Secrets, error) {
	envPath := filepath.Join(dir, template.EnvFile)
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return Secrets{}, fmt.Errorf("load %s: %w", envPath, err)
		}
	}
	return Secrets{
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		GroqModel:    os.Getenv("GROQ_MODEL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		SerpAPIKey:   os.Getenv("SERP_API_KEY"),
	}, nil
}

// Masked returns the secrets with all but the last four characters hidden.
func (s Secrets) Masked() map[string]string {
	return map[string]string{
		"GROQ_API_KEY":   mask(s.GroqAPIKey),
		"GROQ_MODEL":     s.GroqModel,
		"GEMINI_API_KEY": mask(s.GeminiAPIKey),
		"SERP_API_KEY":   mask(s.SerpAPIKey),
	}
}

func mask(v string) string {
	switch {
	case v == "":
		return "(not set)"
	case len(v) <= 4:
		return "****"
	default:
		return strings.Repeat("*", 8) + v[len(v)-4:]
	}
}

// EngineConfig resolves the provider settings for the configured engine.
// The config model wins over GROQ_MODEL.
func (c *Config) EngineConfig(s Secrets) engine.Config {
	ec := engine.Config{Model: c.Model}
	switch strings.ToLower(c.Engine) {
	case "groq":
		ec.APIKey = s.GroqAPIKey
		if ec.Model == "" {
			ec.Model = s.GroqModel
		}
	case "gemini":
		ec.APIKey = s.GeminiAPIKey
	}
	return ec
}
