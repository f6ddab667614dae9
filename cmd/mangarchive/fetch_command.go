package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mangarchive/internal/archiver"
	"mangarchive/internal/chapter"
	"mangarchive/internal/collection"
	"mangarchive/internal/fileutil"
	"mangarchive/internal/history"
	"mangarchive/internal/logging"
	"mangarchive/internal/notifications"
	"mangarchive/internal/runlock"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "fetch <https-url> <lang>",
		Short:       "Archive a title (same as running mangarchive with two arguments)",
		Args:        usageArgs(2),
		Annotations: map[string]string{deferConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, ctx, args[0], args[1])
		},
	}
}

func runFetch(cmd *cobra.Command, cmdCtx *commandContext, rawURL, lang string) error {
	ref, err := collection.Parse(rawURL, lang)
	if err != nil {
		return err
	}
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.LockDir(), ref.DirName())
	if err != nil {
		return err
	}
	defer lock.Release()

	runID := uuid.NewString()
	runLog, err := logging.NewFromConfigWriter(cfg, runID, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer runLog.Close()
	logger := runLog.Logger

	collectionDir := archiver.CollectionDir(cfg, ref)
	if err := os.MkdirAll(collectionDir, 0o755); err != nil {
		return fmt.Errorf("create collection directory: %w", err)
	}
	if removed, err := fileutil.SweepTemp(collectionDir, fileutil.TempFilePattern, chapter.RenderScratchPattern); err != nil {
		logging.WarnWithContext(logger, "stale temp sweep failed", "temp_sweep_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "leftover temp files stay in the collection directory"),
		)
	} else if removed > 0 {
		logger.Info("removed leftovers from an interrupted run",
			logging.Int("count", removed),
			logging.String(logging.FieldEventType, "temp_swept"),
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder archiver.Recorder
	store, err := history.Open(ctx, cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on paths.state_dir"),
			logging.String(logging.FieldImpact, "this run will not appear in `mangarchive history`"),
		)
	} else {
		defer store.Close()
		recorder = store
	}

	a, err := archiver.NewFromConfig(cfg, archiver.RunInputs{
		RunID:     runID,
		SourceURL: rawURL,
		Ref:       ref,
		Recorder:  recorder,
		Notifier:  notifications.NewService(cfg),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if _, err := a.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "DONE")
	return nil
}
