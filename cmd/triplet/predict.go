package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/triplet-forecast/internal/service"
)

var (
	predictFrom     string
	predictGrouping string
	predictHorizon  int
	predictOutput   string
)

func init() {
	predictCmd.Flags().StringVar(&predictFrom, "from", "", "Predict the days after this date (YYYY-MM-DD, default today)")
	predictCmd.Flags().StringVarP(&predictGrouping, "grouping", "g", "", "Grouping to predict with (default engine.grouping)")
	predictCmd.Flags().IntVar(&predictHorizon, "horizon", 0, "Override the number of days to predict")
	predictCmd.Flags().StringVarP(&predictOutput, "output", "o", "", "Override the forecast output directory")
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Rank candidates for each upcoming day",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		from := time.Now().UTC()
		if predictFrom != "" {
			parsed, err := time.Parse("2006-01-02", predictFrom)
			if err != nil {
				return fmt.Errorf("invalid --from date: %w", err)
			}
			from = parsed
		}
		if predictHorizon > 0 {
			cfg.Forecast.Horizon = predictHorizon
		}
		if predictOutput != "" {
			cfg.Forecast.OutputPath = predictOutput
		}
		grouping := groupingsOrDefault(nil)[0]
		if predictGrouping != "" {
			grouping = predictGrouping
		}

		if err := setupDatabase(ctx, false); err != nil {
			return err
		}
		source, err := newSource()
		if err != nil {
			return err
		}
		svc, err := service.NewForecastService(cfg.Forecast, cfg.Engine, source, log)
		if err != nil {
			return err
		}

		outcome, err := svc.Predict(ctx, grouping, from)
		if err != nil {
			return err
		}
		for _, p := range outcome.Predictions {
			fmt.Printf("%s [%s] %s\n", p.Date.Format("2006-01-02"), p.Key, p.TopText())
		}
		return svc.WriteOutputs(outcome)
	},
}
