package template

import (
	_ "embed"
)

//go:embed config.yaml
var DefaultConfig string

//go:embed env.example
var DefaultEnv string

// AnalystDir is the name of the analyst configuration directory.
const AnalystDir = ".analyst"

// File name constants for consistent usage across the codebase.
const (
	ConfigFile = "config.yaml"
	EnvFile    = ".env"        // Secrets, read from the working directory
	EnvExample = "env.example" // Written into AnalystDir by init
)

// DefaultFiles returns the default files to create in .analyst/
func DefaultFiles() map[string]string {
	return map[string]string{
		ConfigFile: DefaultConfig,
		EnvExample: DefaultEnv,
	}
}
