package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jywlabs/analyst/internal/config"
	"github.com/jywlabs/analyst/internal/engine"
	"github.com/jywlabs/analyst/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective analyst configuration.

Displays settings from .analyst/config.yaml merged over the defaults, the
provider secrets (masked) and the registered engines.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := os.Stat(config.Path(".")); os.IsNotExist(err) {
		fmt.Fprintln(out, "No .analyst/config.yaml found (using defaults)")
		fmt.Fprintln(out, "Run 'analyst init' to create a configuration file.")
	} else {
		fmt.Fprintf(out, "Current configuration (%s):\n", config.Path("."))
	}
	fmt.Fprintln(out)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintln(out, strings.TrimRight(string(data), "\n"))
	fmt.Fprintln(out)

	secrets, err := config.LoadSecrets(".")
	if err != nil {
		return err
	}
	p := output.New(out)
	p.Settings("Secrets", secrets.Masked())
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Engines: %s\n", strings.Join(engine.Available(), ", "))
	return nil
}
