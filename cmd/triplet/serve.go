package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/triplet-forecast/internal/health"
	"github.com/yourusername/triplet-forecast/internal/metrics"
	"github.com/yourusername/triplet-forecast/internal/scheduler"
	"github.com/yourusername/triplet-forecast/internal/service"
)

var serveRunNow bool

func init() {
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", false, "Run the scheduled backtest once at startup")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health and metrics endpoints and re-run backtests on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := setupDatabase(ctx, false); err != nil {
			return err
		}

		checks := map[string]health.CheckFunc{}
		var sched *scheduler.Scheduler
		if cfg.Scheduler.Enabled {
			var err error
			if sched, err = newScheduler(); err != nil {
				return err
			}
			checks["scheduler"] = sched.Check
		}

		hcfg := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        cfg.Metrics.Port,
			MetricsPath: cfg.Metrics.Path,
			Logger:      log,
			Checks:      checks,
		}
		if cfg.Metrics.Enabled {
			hcfg.Metrics = metrics.Handler()
		}
		if db != nil {
			hcfg.DB = db
		}
		server := health.NewServer(hcfg)
		if err := server.Start(ctx); err != nil {
			return err
		}

		if sched != nil {
			if serveRunNow {
				// a failure here is reported by /ready, not fatal
				_ = sched.RunNow(ctx, scheduler.BacktestJobName)
			}
			if err := sched.Start(); err != nil {
				return err
			}
			log.WithField("next_run", sched.GetNextRun()).Info("Scheduler running")
		}
		server.SetReady(true)

		<-ctx.Done()
		log.Info("Shutting down")
		server.SetReady(false)
		if sched != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				log.WithError(err).Warn("Scheduler did not stop cleanly")
			}
		}
		return server.Shutdown()
	},
}

func newScheduler() (*scheduler.Scheduler, error) {
	if cfg.Scheduler.BacktestCron == "" {
		return nil, fmt.Errorf("scheduler.backtest_cron is required when the scheduler is enabled")
	}
	source, err := newSource()
	if err != nil {
		return nil, err
	}
	engine, err := newEngine()
	if err != nil {
		return nil, err
	}
	svc, err := service.NewBacktestService(cfg.Backtest, source, engine, runRepo(), log)
	if err != nil {
		return nil, err
	}

	sched := scheduler.NewScheduler(log, 4*time.Hour)
	if err := sched.ScheduleBacktest(svc, cfg.Scheduler.BacktestCron, groupingsOrDefault(cfg.Scheduler.Groupings)); err != nil {
		return nil, err
	}
	return sched, nil
}
