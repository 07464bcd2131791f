package main

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/app"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	scheduleInterval time.Duration
	scheduleLogFile  string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Sync every active linked bank periodically (foreground)",
	Long: `Start a sync of every active linked bank now and then once per interval,
until interrupted. Banks that are already syncing are skipped.

With --log-file the JSON logs also go to a size-rotated file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := scheduleInterval
		if interval <= 0 {
			interval = cfg.SyncScheduleInterval
		}

		log := logger
		if scheduleLogFile != "" {
			rotated := &lumberjack.Logger{
				Filename:   scheduleLogFile,
				MaxSize:    50, // megabytes
				MaxBackups: 5,
				MaxAge:     28, // days
				Compress:   true,
			}
			defer rotated.Close()
			log = slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stderr, rotated), nil))
			slog.SetDefault(log)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer application.Close()

		log.Info("Scheduler starting", slog.Duration("interval", interval))
		app.RunScheduler(ctx, interval, application.Services.Sync, log)
		return nil
	},
}

func init() {
	scheduleCmd.Flags().DurationVar(&scheduleInterval, "interval", 0, "time between sync rounds (default SYNC_SCHEDULE_INTERVAL)")
	scheduleCmd.Flags().StringVar(&scheduleLogFile, "log-file", "", "also write logs to this file, rotated by size")
}
