// Command sentiview keeps the post database fresh and emails a daily
// sentiment summary.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ibeckermayer/sentiview/internal/app"
	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/scheduler"
)

var (
	configPath string
	runNow     bool
)

var rootCmd = &cobra.Command{
	Use:          "sentiview",
	Short:        "Refresh, label and summarise posts on a schedule",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (default is the user config dir)")
	rootCmd.Flags().BoolVar(&runNow, "now", false, "refresh once at startup before waiting for the schedule")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	a, logger, closeFn, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	cfg := a.Config()
	sched, err := scheduler.New(cfg.Schedule.Timezone, logger)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	refresh := func(ctx context.Context) error {
		if _, err := a.Refresh(ctx); err != nil {
			return err
		}
		if _, err := a.Label(ctx); err != nil && !errors.Is(err, app.ErrNoAnalyzer) {
			return err
		}
		return nil
	}

	// Summaries need somewhere to send them
	apply := func(cfg *config.Config) error {
		return sched.Apply(cfg.Schedule, cfg.Email.SMTPHost != "", refresh, a.SendSummary)
	}
	if err := apply(cfg); err != nil {
		return fmt.Errorf("schedule jobs: %w", err)
	}

	if runNow {
		if err := sched.RunNow(scheduler.JobRefresh, refresh); err != nil {
			logger.Error("Initial refresh failed", "error", err)
		}
	}

	path := configPath
	if path == "" {
		if path, err = config.ConfigPath(); err != nil {
			return err
		}
	}
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()

	reload := func() {
		if err := a.ReloadConfig(); err != nil {
			logger.Error("Reload failed", "error", err)
			return
		}
		if err := apply(a.Config()); err != nil {
			logger.Error("Reschedule failed", "error", err)
		}
	}
	onWatchErr := func(err error) { logger.Warn("Config watcher", "error", err) }
	if err := config.Watch(watchCtx, path, reload, onWatchErr); err != nil {
		logger.Warn("Config changes will need SIGHUP", "error", err)
	}

	sched.Start()
	for _, j := range sched.ListJobs() {
		logger.Info("Scheduled", "job", j.Name, "next", j.NextRun)
	}
	logger.Info("sentiview running", "timezone", sched.Location())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigs {
		if sig == syscall.SIGHUP {
			reload()
			continue
		}
		break
	}

	<-sched.Stop().Done()
	logger.Info("sentiview stopped")
	return nil
}
