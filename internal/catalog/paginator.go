package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mangarchive/internal/artifact"
	"mangarchive/internal/collection"
	"mangarchive/internal/logging"
	"mangarchive/internal/mangadex"
)

// Fetcher retrieves a remote document after waiting at least minDelay.
type Fetcher interface {
	Fetch(ctx context.Context, url string, minDelay time.Duration) ([]byte, error)
}

// Paginator caches the listing pages of one collection.
type Paginator struct {
	cache     *artifact.Cache
	fetcher   Fetcher
	endpoints mangadex.Endpoints
	delay     time.Duration
	logger    *slog.Logger
}

// NewPaginator wires a paginator. delay is applied before every page request.
func NewPaginator(cache *artifact.Cache, fetcher Fetcher, endpoints mangadex.Endpoints, delay time.Duration, logger *slog.Logger) *Paginator {
	return &Paginator{
		cache:     cache,
		fetcher:   fetcher,
		endpoints: endpoints,
		delay:     delay,
		logger:    logging.NewComponentLogger(logger, "catalog"),
	}
}

// PageKey is the artifact key of listing page index.
func PageKey(index int) string {
	return fmt.Sprintf("page-%d.json", index)
}

// ListAll ensures page 0, reads its total, then ensures pages 0 through
// ceil(total/pageSize) inclusive. The last page may be empty.
func (p *Paginator) ListAll(ctx context.Context, ref collection.Ref) ([]mangadex.ListingPage, error) {
	first, err := p.ensurePage(ctx, ref, 0)
	if err != nil {
		return nil, err
	}
	pageCount := p.endpoints.PageCount(first.Total)

	logging.WithContext(ctx, p.logger).Info("listing resolved",
		logging.Int("total", first.Total),
		logging.Int("pages", pageCount+1),
		logging.String(logging.FieldEventType, "listing_resolved"),
	)

	pages := make([]mangadex.ListingPage, 0, pageCount+1)
	pages = append(pages, first)
	for index := 1; index <= pageCount; index++ {
		page, err := p.ensurePage(ctx, ref, index)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (p *Paginator) ensurePage(ctx context.Context, ref collection.Ref, index int) (mangadex.ListingPage, error) {
	url := p.endpoints.FeedURL(ref.ID, index)
	data, _, err := p.cache.EnsureBytes(ctx, PageKey(index), func(ctx context.Context) ([]byte, error) {
		return p.fetcher.Fetch(ctx, url, p.delay)
	})
	if err != nil {
		return mangadex.ListingPage{}, err
	}
	return mangadex.ParseListingPage(index, data)
}
