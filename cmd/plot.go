package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	infrafitness "github.com/kilianp07/evopool/infra/fitnesslog"
	"github.com/kilianp07/evopool/infra/plot"
)

var (
	plotOut  string
	plotName string
)

var plotCmd = &cobra.Command{
	Use:   "plot <run log>",
	Short: "Render the fitness history of a run log as HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  plotRunLog,
}

func init() {
	plotCmd.Flags().StringVarP(&plotOut, "out", "o", "plots", "output directory")
	plotCmd.Flags().StringVar(&plotName, "name", infrafitness.RunLogName, "plot file name without extension")
	rootCmd.AddCommand(plotCmd)
}

func plotRunLog(cmd *cobra.Command, args []string) error {
	history, err := infrafitness.ReadRunLogFile(args[0])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("%s: no completed generation", args[0])
	}
	p, err := plot.NewEChartsPlotter(plotOut)
	if err != nil {
		return err
	}
	path, err := p.PlotFitness(history, plotName)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d generations plotted to %s\n", len(history), path)
	return err
}
