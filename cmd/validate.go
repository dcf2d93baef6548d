package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evopool/config"
	"github.com/kilianp07/evopool/core/factory"
	"github.com/kilianp07/evopool/core/fitnesslog"
	coremetrics "github.com/kilianp07/evopool/core/metrics"
	corenotify "github.com/kilianp07/evopool/core/notify"
	_ "github.com/kilianp07/evopool/infra/fitnesslog"
	_ "github.com/kilianp07/evopool/infra/metrics"
	_ "github.com/kilianp07/evopool/infra/notify"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configuration and check every module type is known",
	RunE:  validate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	checks := []struct {
		section string
		known   []string
		mods    []factory.ModuleConfig
	}{
		{"logging.backends", fitnesslog.Backends(), cfg.Logging.Backends},
		{"reporting.sinks", corenotify.Sinks(), cfg.Reporting.Sinks},
		{"metrics.sinks", coremetrics.Sinks(), cfg.Metrics.Sinks},
	}
	for _, c := range checks {
		for _, m := range c.mods {
			if !slices.Contains(c.known, m.Type) {
				return fmt.Errorf("%s: %w %q (known: %v)", c.section, factory.ErrUnknownType, m.Type, c.known)
			}
		}
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "configuration OK: run %s, %d generations, %d clients\n",
		cfg.Run.RunID, cfg.Run.Generations, cfg.Evaluator.Clients)
	return err
}
