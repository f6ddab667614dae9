package logging

import (
	"context"
	"log/slog"

	"mangarchive/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one archive run across console and file output.
	FieldRunID = "run_id"
	// FieldCollection is the collection directory name, e.g. "one-piece-en".
	FieldCollection = "collection"
	// FieldChapter is the chapter ordering key.
	FieldChapter = "chapter"
	// FieldStage is the chapter pipeline stage name.
	FieldStage = "stage"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if collection, ok := services.CollectionFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCollection, collection))
	}
	if chapter, ok := services.ChapterFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldChapter, chapter))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
