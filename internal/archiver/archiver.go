package archiver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mangarchive/internal/catalog"
	"mangarchive/internal/chapter"
	"mangarchive/internal/collection"
	"mangarchive/internal/history"
	"mangarchive/internal/logging"
	"mangarchive/internal/mangadex"
	"mangarchive/internal/notifications"
	"mangarchive/internal/services"
)

// Lister returns every listing page of a collection.
type Lister interface {
	ListAll(ctx context.Context, ref collection.Ref) ([]mangadex.ListingPage, error)
}

// Processor runs the chapter pipeline for one entry.
type Processor interface {
	Process(ctx context.Context, entry mangadex.Entry) (chapter.Result, error)
}

// Recorder persists run history. Failures are logged and never stop a run.
type Recorder interface {
	StartRun(ctx context.Context, run history.Run) error
	RecordChapter(ctx context.Context, runID string, outcome history.ChapterOutcome) error
	FinishRun(ctx context.Context, runID string, totals history.RunTotals, runErr error) error
}

// Options wires an Archiver.
type Options struct {
	RunID       string
	SourceURL   string
	Ref         collection.Ref
	ContentType string
	Lister      Lister
	Processor   Processor
	Recorder    Recorder
	Notifier    notifications.Service
	Logger      *slog.Logger
}

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Pages     int
	Selected  int
	Completed int
	External  int
	Fetched   int
	// Produced counts chapters that gained at least one artifact this run.
	Produced int
	Duration time.Duration
}

// Archiver runs the whole pipeline for a collection.
type Archiver struct {
	opts   Options
	logger *slog.Logger
}

// New validates options and returns an Archiver.
func New(opts Options) (*Archiver, error) {
	if opts.Lister == nil || opts.Processor == nil {
		return nil, errors.New("archiver: lister and processor are required")
	}
	if opts.ContentType == "" {
		opts.ContentType = "chapter"
	}
	if opts.Notifier == nil {
		opts.Notifier = notifications.NewNoop()
	}
	return &Archiver{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "archiver")}, nil
}

// Run lists, filters, and processes the collection. Entries are handled in
// reverse listing order because the feed is sorted newest first.
func (a *Archiver) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	ref := a.opts.Ref
	ctx = services.WithCollection(services.WithRunID(ctx, a.opts.RunID), ref.DirName())
	logger := logging.WithContext(ctx, a.logger)
	summary := Summary{RunID: a.opts.RunID}

	a.record(ctx, "start run", func(r Recorder) error {
		return r.StartRun(ctx, history.Run{
			ID:         a.opts.RunID,
			Collection: ref.DirName(),
			Language:   ref.Language,
			SourceURL:  a.opts.SourceURL,
			StartedAt:  started,
		})
	})

	logger.Info("archive run started",
		logging.String("manga_id", ref.ID),
		logging.String("language", ref.Language),
		logging.String(logging.FieldEventType, "run_started"),
	)

	summary, err := a.run(ctx, summary)
	summary.Duration = time.Since(started)

	a.record(ctx, "finish run", func(r Recorder) error {
		return r.FinishRun(context.WithoutCancel(ctx), a.opts.RunID, history.RunTotals{
			Selected:  summary.Selected,
			Completed: summary.Completed,
			External:  summary.External,
			Fetched:   summary.Fetched,
		}, err)
	})

	if err != nil {
		logging.ErrorWithContext(logger, "archive run failed", "run_failed",
			logging.Error(err),
			logging.Int("completed", summary.Completed),
			logging.String(logging.FieldErrorHint, "re-run the same command to resume from the first missing artifact"),
		)
		a.notify(ctx, func(n notifications.Service) error {
			return n.NotifyError(context.WithoutCancel(ctx), err, ref.DirName())
		})
		return summary, err
	}

	logger.Info("archive run complete",
		logging.Int("selected", summary.Selected),
		logging.Int("completed", summary.Completed),
		logging.Int("external", summary.External),
		logging.Int("fetched", summary.Fetched),
		logging.Duration("duration", summary.Duration),
		logging.String(logging.FieldEventType, "run_completed"),
	)
	a.notify(ctx, func(n notifications.Service) error {
		return n.NotifyRunCompleted(ctx, ref.Title(), summary.Completed, summary.External, summary.Duration)
	})
	return summary, nil
}

func (a *Archiver) run(ctx context.Context, summary Summary) (Summary, error) {
	ref := a.opts.Ref
	pages, err := a.opts.Lister.ListAll(ctx, ref)
	if err != nil {
		return summary, err
	}
	summary.Pages = len(pages)

	selected := catalog.Select(ctx, a.opts.Logger, pages, a.opts.ContentType, ref.Language)
	summary.Selected = len(selected)
	a.notify(ctx, func(n notifications.Service) error {
		return n.NotifyRunStarted(ctx, ref.Title(), ref.Language, len(selected))
	})

	for _, entry := range OldestFirst(selected) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result, err := a.opts.Processor.Process(ctx, entry)
		summary.Fetched += result.Fetched
		if err != nil {
			return summary, err
		}

		switch result.Status {
		case chapter.StatusExternal:
			summary.External++
		default:
			summary.Completed++
		}
		if len(result.Produced) > 0 {
			summary.Produced++
			if result.Status == chapter.StatusCompleted {
				a.notify(ctx, func(n notifications.Service) error {
					return n.NotifyChapterCompleted(ctx, ref.Title(), result.Key, result.Pages)
				})
			}
		}

		a.record(ctx, "record chapter", func(r Recorder) error {
			return r.RecordChapter(ctx, a.opts.RunID, history.ChapterOutcome{
				Key:     result.Key,
				EntryID: entry.ID,
				Status:  result.Status,
				Pages:   result.Pages,
				Fetched: result.Fetched,
			})
		})
	}
	return summary, nil
}

// OldestFirst returns entries in reverse order without modifying the input.
func OldestFirst(entries []mangadex.Entry) []mangadex.Entry {
	out := make([]mangadex.Entry, len(entries))
	for i, entry := range entries {
		out[len(entries)-1-i] = entry
	}
	return out
}

func (a *Archiver) record(ctx context.Context, op string, fn func(Recorder) error) {
	if a.opts.Recorder == nil {
		return
	}
	if err := fn(a.opts.Recorder); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, a.logger), "history ledger write failed", "history_write_failed",
			logging.String("operation", op),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on paths.state_dir"),
			logging.String(logging.FieldImpact, "run history is incomplete; archiving continues"),
		)
	}
}

func (a *Archiver) notify(ctx context.Context, fn func(notifications.Service) error) {
	if err := fn(a.opts.Notifier); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, a.logger), "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "no push notification delivered"),
		)
	}
}
