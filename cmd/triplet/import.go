package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/triplet-forecast/internal/datasource"
	"github.com/yourusername/triplet-forecast/internal/service"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the configured csv or http history into Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.Data.Source == datasource.PostgresSourceType {
			return fmt.Errorf("data.source is already postgres, nothing to import")
		}
		if err := setupDatabase(ctx, true); err != nil {
			return err
		}
		source, err := newSource()
		if err != nil {
			return err
		}

		stats, err := service.NewIngestionService(source, repos.Observation, log).Import(ctx)
		if err != nil {
			return err
		}
		fmt.Println(stats.String())
		return nil
	},
}
