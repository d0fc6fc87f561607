// Package main provides the triplet forecasting CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/triplet-forecast/internal/backtest"
	"github.com/yourusername/triplet-forecast/internal/config"
	"github.com/yourusername/triplet-forecast/internal/database"
	"github.com/yourusername/triplet-forecast/internal/datasource"
	"github.com/yourusername/triplet-forecast/internal/logger"
	"github.com/yourusername/triplet-forecast/internal/metrics"
	"github.com/yourusername/triplet-forecast/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	log        *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(backtestCmd, predictCmd, importCmd, serveCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "triplet",
	Short: "Forecast and backtest 3-digit draw histories",
	Long: `Counts digit and triplet frequencies over a dated history of 3-digit draws,
ranks the most likely next values and measures that ranking with an
expanding-window backtest.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.NewLogger(cfg.App.LogLevel)
		metrics.InitRegistry()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("triplet %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return err
	}
	return config.Validate(cfg)
}

// setupDatabase connects and migrates when forced or when the config needs Postgres
func setupDatabase(ctx context.Context, force bool) error {
	if !force && !cfg.UsesDatabase() {
		return nil
	}
	var err error
	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	repos, err = repository.NewRepositories(db)
	return err
}

func observationRepo() repository.ObservationRepository {
	if repos == nil {
		return nil
	}
	return repos.Observation
}

func runRepo() repository.BacktestRunRepository {
	if repos == nil {
		return nil
	}
	return repos.BacktestRun
}

func newSource() (datasource.Source, error) {
	return datasource.NewFactory(&cfg.Data, log).Create(observationRepo())
}

func newEngine() (*backtest.Engine, error) {
	btCfg, err := backtest.FromConfig(&cfg.Engine)
	if err != nil {
		return nil, err
	}
	return backtest.NewEngine(btCfg, log)
}

// groupingsOrDefault falls back to the configured engine grouping
func groupingsOrDefault(groupings []string) []string {
	if len(groupings) > 0 {
		return groupings
	}
	return []string{cfg.Engine.Grouping}
}
