package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	collectionKey contextKey = "collection"
	chapterKey    contextKey = "chapter"
	stageKey      contextKey = "stage"
)

// WithRunID annotates context with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCollection annotates context with the collection working directory name.
func WithCollection(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, collectionKey, name)
}

// CollectionFromContext returns the collection name if present.
func CollectionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(collectionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithChapter annotates context with the chapter ordering key.
func WithChapter(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, chapterKey, key)
}

// ChapterFromContext returns the chapter ordering key if present.
func ChapterFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(chapterKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
