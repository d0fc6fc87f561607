package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/triplet-forecast/internal/backtest"
	"github.com/yourusername/triplet-forecast/internal/service"
)

var (
	backtestGroupings []string
	backtestOutput    string
)

func init() {
	backtestCmd.Flags().StringSliceVarP(&backtestGroupings, "grouping", "g", nil,
		fmt.Sprintf("Grouping to evaluate, repeatable (%v)", backtest.GroupingNames()))
	backtestCmd.Flags().StringVarP(&backtestOutput, "output", "o", "", "Override the backtest output directory")
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the expanding-window backtest",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := setupDatabase(ctx, false); err != nil {
			return err
		}
		if backtestOutput != "" {
			cfg.Backtest.OutputPath = backtestOutput
		}

		source, err := newSource()
		if err != nil {
			return err
		}
		engine, err := newEngine()
		if err != nil {
			return err
		}
		svc, err := service.NewBacktestService(cfg.Backtest, source, engine, runRepo(), log)
		if err != nil {
			return err
		}

		outcome, err := svc.Run(ctx, groupingsOrDefault(backtestGroupings))
		if err != nil {
			return err
		}

		for _, result := range outcome.Results {
			fmt.Println(backtest.GenerateConsoleReport(result.Summary))
			fmt.Println(backtest.GenerateRecommendation(result.Summary))
			fmt.Println()
		}
		for _, name := range outcome.Skipped {
			log.WithField("grouping", name).Warn("Not enough observations after warm-up, grouping skipped")
		}
		if len(outcome.Results) > 1 {
			fmt.Println(outcome.Aggregate.JSON())
		}
		log.WithFields(logrus.Fields{
			"runs":    len(outcome.Results),
			"skipped": len(outcome.Skipped),
		}).Info("Backtest finished")
		return nil
	},
}
