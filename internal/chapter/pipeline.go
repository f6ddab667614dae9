package chapter

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"mangarchive/internal/artifact"
	"mangarchive/internal/collection"
	"mangarchive/internal/logging"
	"mangarchive/internal/mangadex"
	"mangarchive/internal/services"
)

// Stage names, in execution order.
const (
	StageMetadata = "metadata"
	StageAssetDir = "asset_dir"
	StageAssets   = "assets"
	StageArchive  = "archive"
	StageManifest = "manifest"
	StageRender   = "render"
)

// Outcome of processing one entry.
const (
	StatusCompleted = "completed"
	StatusExternal  = "external"
)

// Fetcher retrieves a remote document after waiting at least minDelay.
type Fetcher interface {
	Fetch(ctx context.Context, url string, minDelay time.Duration) ([]byte, error)
}

// Options wires a Pipeline. A nil Renderer disables the render stage.
type Options struct {
	Cache         *artifact.Cache
	Fetcher       Fetcher
	Endpoints     mangadex.Endpoints
	Ref           collection.Ref
	Renderer      Renderer
	MetadataDelay time.Duration
	AssetDelay    time.Duration
	Logger        *slog.Logger
}

// Result summarizes one Process call.
type Result struct {
	Key    string
	Status string
	Pages  int
	// Fetched counts network requests issued (metadata plus page images).
	Fetched int
	// Produced lists artifact keys written during this call.
	Produced []string
}

// Pipeline processes entries of a single collection.
type Pipeline struct {
	cache         *artifact.Cache
	fetcher       Fetcher
	endpoints     mangadex.Endpoints
	ref           collection.Ref
	renderer      Renderer
	metadataDelay time.Duration
	assetDelay    time.Duration
	logger        *slog.Logger
}

// NewPipeline constructs a Pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Cache == nil {
		return nil, errors.New("chapter pipeline: cache is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("chapter pipeline: fetcher is required")
	}
	return &Pipeline{
		cache:         opts.Cache,
		fetcher:       opts.Fetcher,
		endpoints:     opts.Endpoints,
		ref:           opts.Ref,
		renderer:      opts.Renderer,
		metadataDelay: opts.MetadataDelay,
		assetDelay:    opts.AssetDelay,
		logger:        logging.NewComponentLogger(opts.Logger, "chapter"),
	}, nil
}

// Process runs every stage for entry, skipping stages whose artifact already exists.
func (p *Pipeline) Process(ctx context.Context, entry mangadex.Entry) (Result, error) {
	key := entry.OrderingKey()
	ctx = services.WithChapter(ctx, key)
	result := Result{Key: key}

	logging.WithContext(ctx, p.logger).Info("processing chapter", logging.String("entry_id", entry.ID))

	if entry.IsExternal() {
		logging.WithContext(ctx, p.logger).Info("chapter has an external URL, skipping",
			logging.String("external_url", entry.ExternalURL),
			logging.String(logging.FieldEventType, "chapter_external"),
		)
		result.Status = StatusExternal
		return result, nil
	}

	meta, err := p.ensureMetadata(services.WithStage(ctx, StageMetadata), entry, &result)
	if err != nil {
		return result, err
	}
	result.Pages = len(meta.Pages)

	if _, err := p.cache.EnsureDir(services.WithStage(ctx, StageAssetDir), key); err != nil {
		return result, err
	}

	names := AssetNames(meta.Pages)
	if err := p.ensureAssets(services.WithStage(ctx, StageAssets), key, meta, names, &result); err != nil {
		return result, err
	}

	if err := p.ensureArchive(services.WithStage(ctx, StageArchive), key, names, &result); err != nil {
		return result, err
	}

	manifestKey := OutputKey(p.ref.DirName(), key, ExtManifest)
	if err := p.ensure(services.WithStage(ctx, StageManifest), manifestKey, &result, func(context.Context) ([]byte, error) {
		return BuildManifest(p.ref.Name, p.ref.Language, key, names), nil
	}); err != nil {
		return result, err
	}

	if err := p.ensureRendered(services.WithStage(ctx, StageRender), key, manifestKey, &result); err != nil {
		return result, err
	}

	result.Status = StatusCompleted
	logging.WithContext(ctx, p.logger).Info("chapter complete",
		logging.Int("pages", result.Pages),
		logging.Int("fetched", result.Fetched),
		logging.String(logging.FieldEventType, "chapter_completed"),
	)
	return result, nil
}

func (p *Pipeline) ensureMetadata(ctx context.Context, entry mangadex.Entry, result *Result) (mangadex.ChapterMetadata, error) {
	metaKey := MetadataKey(result.Key)
	data, hit, err := p.cache.EnsureBytes(ctx, metaKey, func(ctx context.Context) ([]byte, error) {
		result.Fetched++
		return p.fetcher.Fetch(ctx, p.endpoints.AtHomeURL(entry.ID), p.metadataDelay)
	})
	if err != nil {
		return mangadex.ChapterMetadata{}, err
	}
	if !hit {
		result.Produced = append(result.Produced, metaKey)
	}
	return mangadex.ParseChapterMetadata(data)
}

func (p *Pipeline) ensureAssets(ctx context.Context, key string, meta mangadex.ChapterMetadata, names []string, result *Result) error {
	for i, page := range meta.Pages {
		url := p.endpoints.AssetURL(meta.Hash, page)
		err := p.ensure(ctx, AssetKey(key, names[i]), result, func(ctx context.Context) ([]byte, error) {
			result.Fetched++
			return p.fetcher.Fetch(ctx, url, p.assetDelay)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) ensureArchive(ctx context.Context, key string, names []string, result *Result) error {
	archiveKey := OutputKey(p.ref.DirName(), key, ExtArchive)
	store := p.cache.Store()
	return p.ensure(ctx, archiveKey, result, func(context.Context) ([]byte, error) {
		return BuildArchive(names, func(name string) ([]byte, error) {
			return store.Read(AssetKey(key, name))
		})
	})
}

func (p *Pipeline) ensureRendered(ctx context.Context, key, manifestKey string, result *Result) error {
	renderedKey := OutputKey(p.ref.DirName(), key, ExtRendered)
	if p.renderer == nil {
		logging.WithContext(ctx, p.logger).Debug("render disabled, skipping",
			logging.String(logging.FieldEventType, "render_skipped"),
		)
		return nil
	}
	store := p.cache.Store()
	return p.ensure(ctx, renderedKey, result, func(ctx context.Context) ([]byte, error) {
		manifestPath := store.Path(manifestKey)
		return p.renderer.Render(ctx, RenderRequest{
			Dir:      filepath.Dir(manifestPath),
			Manifest: filepath.Base(manifestPath),
			Output:   renderedKey,
		})
	})
}

func (p *Pipeline) ensure(ctx context.Context, key string, result *Result, produce artifact.Producer) error {
	hit, err := p.cache.EnsurePresent(ctx, key, produce)
	if err != nil {
		return err
	}
	if !hit {
		result.Produced = append(result.Produced, key)
	}
	return nil
}
