package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "evopool",
	Short:         "Parallel fitness evaluation and generation reporting",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file (empty: environment only)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
