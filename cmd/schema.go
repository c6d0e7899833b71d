package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jywlabs/analyst/internal/record"
	"github.com/jywlabs/analyst/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:       "schema <plan|research|critique|report>",
	Short:     "Print the JSON schema of a stage record",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: stageNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schema.For(record.Stage(args[0]))
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func stageNames() []string {
	names := make([]string, len(record.Stages))
	for i, s := range record.Stages {
		names[i] = string(s)
	}
	return names
}
