package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jywlabs/analyst/internal/template"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .analyst/ directory",
	Long: `Initialize the .analyst/ directory in the current project.

Creates:
  .analyst/
    config.yaml    # Engine, search, retry and output settings
    env.example    # Provider keys; copy to .env and fill in

After init, set GROQ_API_KEY (or GEMINI_API_KEY) and run 'analyst analyze'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initProject(".", cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// initProject writes the default files into dir/.analyst.
func initProject(dir string, w io.Writer) error {
	configDir := filepath.Join(dir, template.AnalystDir)

	// Check if already initialized
	if _, err := os.Stat(configDir); err == nil {
		return fmt.Errorf("%s/ already exists", template.AnalystDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	// Create default files from templates
	for filename, content := range template.DefaultFiles() {
		filePath := filepath.Join(configDir, filename)
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
	}

	fmt.Fprintln(w, "Initialized .analyst/")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Created:")
	fmt.Fprintln(w, "  .analyst/config.yaml   - Engine, search and output settings")
	fmt.Fprintln(w, "  .analyst/env.example   - Provider keys template")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  1. cp .analyst/env.example .env and add your keys")
	fmt.Fprintln(w, "  2. Run: analyst demo (no keys needed) or analyst analyze \"<problem>\"")
	return nil
}
