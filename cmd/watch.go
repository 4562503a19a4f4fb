package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/logger"
	"github.com/kayz/osprey/internal/report"
)

var (
	watchSchedule string
	watchDir      string
)

var watchCmd = &cobra.Command{
	Use:   "watch <query>",
	Short: "Re-run a search on a cron schedule",
	Long: `Re-run a search on a cron schedule and dump a timestamped JSON
report after every run. Both 5-field and 6-field (with seconds) cron
expressions are accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchSchedule, "cron", "0 * * * *",
		"Cron schedule (5 or 6 fields)")
	watchCmd.Flags().StringVar(&watchDir, "dir", ".",
		"Directory for report dumps")
}

// normalizeCron prepends "0 " to standard 5-field cron expressions
// so they work with the 6-field (with seconds) parser.
func normalizeCron(schedule string) string {
	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}

func runWatch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

	dispatcher, _, err := buildDispatcher()
	if err != nil {
		return err
	}

	tags := classify.Classify(query)
	if err := os.MkdirAll(watchDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	runOnce := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		results := dispatcher.Run(ctx, query, tags)
		rep := report.Aggregate(results)

		path := filepath.Join(watchDir,
			fmt.Sprintf("osprey_watch_%s.json", time.Now().Format("20060102_150405")))
		if _, err := rep.Save(path); err != nil {
			logger.Errorf("watch: failed to save report: %v", err)
			return
		}
		logger.Infof("watch: %d/%d searches successful",
			rep.Summary.Successful, rep.Summary.TotalSearches)
	}

	scheduler := cron.New(cron.WithSeconds())
	if _, err := scheduler.AddFunc(normalizeCron(watchSchedule), runOnce); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", watchSchedule, err)
	}

	logger.Infof("watch: scheduled %q with %q, reports in %s", query, watchSchedule, watchDir)
	scheduler.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	<-scheduler.Stop().Done()
	return nil
}
