package catalog

import (
	"context"
	"log/slog"

	"mangarchive/internal/logging"
	"mangarchive/internal/mangadex"
)

// Skip reasons logged by Select.
const (
	ReasonLanguageMismatch = "language mismatch"
	ReasonTypeMismatch     = "type mismatch"
)

// Select keeps the entries whose type and language match, preserving page and
// entry order. Duplicate entries across pages are kept.
func Select(ctx context.Context, logger *slog.Logger, pages []mangadex.ListingPage, targetType, targetLanguage string) []mangadex.Entry {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "catalog"))
	var selected []mangadex.Entry
	for _, page := range pages {
		for _, entry := range page.Entries {
			switch {
			case entry.Language != targetLanguage:
				logger.Info("skip content",
					logging.String("reason", ReasonLanguageMismatch),
					logging.String("language", entry.Language),
					logging.String("entry_id", entry.ID),
					logging.String(logging.FieldEventType, "entry_skipped"),
				)
			case entry.Type != targetType:
				logger.Info("skip content",
					logging.String("reason", ReasonTypeMismatch),
					logging.String("type", entry.Type),
					logging.String("entry_id", entry.ID),
					logging.String(logging.FieldEventType, "entry_skipped"),
				)
			default:
				selected = append(selected, entry)
			}
		}
	}
	return selected
}
