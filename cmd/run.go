package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evopool/app"
	"github.com/kilianp07/evopool/config"
	"github.com/kilianp07/evopool/infra/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the generation loop",
	RunE:  run,
}

var generations int

func init() {
	runCmd.Flags().IntVarP(&generations, "generations", "g", 0, "override the configured number of generations")
	rootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if generations > 0 {
		cfg.Run.Generations = generations
	}
	svc, err := app.New(cfg, app.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	log := logger.New("main")
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := svc.Close(closeCtx); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()
	best, err := svc.Run(ctx)
	if best != nil {
		log.Infof("best genome %d fitness %g", best.Key, best.Fitness)
	}
	return err
}
