package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mangarchive/internal/logging"
	"mangarchive/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var lines int
	var follow bool
	var raw bool
	var chapterKey string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the log of the latest (or a given) run",
		Args:  usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var path string
			if id := strings.TrimSpace(runID); id != "" {
				path = filepath.Join(cfg.Paths.LogDir, logging.RunLogFileName(id))
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("run log for %s: %w", id, err)
				}
			} else {
				path, err = logs.Latest(cfg.Paths.LogDir)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			emit := func(line string) {
				if !logs.Matches(line, chapterKey) {
					return
				}
				if !raw {
					line = logs.Summarize(line)
				}
				fmt.Fprintln(out, line)
			}

			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				emit(line)
			}
			if !follow {
				return nil
			}

			followCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return logs.Follow(followCtx, path, offset, 500*time.Millisecond, emit)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run id to show (default: most recent run)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON records unmodified")
	cmd.Flags().StringVar(&chapterKey, "chapter", "", "Only show records for this chapter key")
	return cmd
}
