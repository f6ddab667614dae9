package archiver

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"mangarchive/internal/artifact"
	"mangarchive/internal/catalog"
	"mangarchive/internal/chapter"
	"mangarchive/internal/collection"
	"mangarchive/internal/config"
	"mangarchive/internal/fetcher"
	"mangarchive/internal/mangadex"
	"mangarchive/internal/notifications"
)

// RunInputs carries the run-scoped values NewFromConfig cannot derive from config.
type RunInputs struct {
	RunID     string
	SourceURL string
	Ref       collection.Ref
	Recorder  Recorder
	Notifier  notifications.Service
	Logger    *slog.Logger
	// Sleeper overrides request pacing; nil uses real sleeps.
	Sleeper fetcher.Sleeper
}

// EndpointsFromConfig builds the request URL builder for cfg.
func EndpointsFromConfig(cfg *config.Config) mangadex.Endpoints {
	return mangadex.Endpoints{
		APIBase:        cfg.API.BaseURL,
		UploadsBase:    cfg.API.UploadsURL,
		PageSize:       cfg.Catalog.PageSize,
		ContentRatings: cfg.Catalog.ContentRatings,
		Includes:       cfg.Catalog.Includes,
	}
}

// CollectionDir is the working directory of ref inside the library.
func CollectionDir(cfg *config.Config, ref collection.Ref) string {
	return filepath.Join(cfg.Paths.LibraryDir, ref.DirName())
}

// RendererFromConfig returns the configured renderer, or nil when rendering
// is disabled.
func RendererFromConfig(cfg *config.Config) chapter.Renderer {
	if !cfg.Render.Enabled {
		return nil
	}
	return chapter.NewCommandRenderer(cfg.Render.Command, cfg.Render.Args)
}

// NewFromConfig assembles the fetcher, artifact store, paginator, and chapter
// pipeline for one collection and returns an Archiver over them.
func NewFromConfig(cfg *config.Config, in RunInputs) (*Archiver, error) {
	client, err := fetcher.NewHTTPClient(cfg.HTTPTimeout(), cfg.API.Proxy)
	if err != nil {
		return nil, fmt.Errorf("http client: %w", err)
	}
	fetch := fetcher.New(fetcher.Options{
		HTTPClient: client,
		UserAgent:  cfg.API.UserAgent,
		Sleeper:    in.Sleeper,
		Logger:     in.Logger,
	})

	cache := artifact.NewCache(artifact.NewFSStore(CollectionDir(cfg, in.Ref)), in.Logger)
	endpoints := EndpointsFromConfig(cfg)

	pipeline, err := chapter.NewPipeline(chapter.Options{
		Cache:         cache,
		Fetcher:       fetch,
		Endpoints:     endpoints,
		Ref:           in.Ref,
		Renderer:      RendererFromConfig(cfg),
		MetadataDelay: cfg.MetadataDelay(),
		AssetDelay:    cfg.AssetDelay(),
		Logger:        in.Logger,
	})
	if err != nil {
		return nil, err
	}

	return New(Options{
		RunID:       in.RunID,
		SourceURL:   in.SourceURL,
		Ref:         in.Ref,
		ContentType: cfg.Catalog.ContentType,
		Lister:      catalog.NewPaginator(cache, fetch, endpoints, cfg.ListingDelay(), in.Logger),
		Processor:   pipeline,
		Recorder:    in.Recorder,
		Notifier:    in.Notifier,
		Logger:      in.Logger,
	})
}
