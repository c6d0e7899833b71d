package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jywlabs/analyst/internal/engine/demo"
	"github.com/jywlabs/analyst/internal/output"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the built-in sample problems",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		output.New(cmd.OutOrStdout()).Samples(demo.SampleProblems())
	},
}

func init() {
	rootCmd.AddCommand(samplesCmd)
}
