package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mangarchive/internal/logging"
	"mangarchive/internal/services"
)

const (
	// errorExcerptLimit bounds how much of a failed response body is kept in the error.
	errorExcerptLimit = 512

	defaultHTTPTimeout = 60 * time.Second
)

// Options configures a Fetcher.
type Options struct {
	HTTPClient *http.Client
	UserAgent  string
	Sleeper    Sleeper
	Logger     *slog.Logger
}

// Fetcher issues paced single-shot GET requests.
type Fetcher struct {
	client    *http.Client
	userAgent string
	sleeper   Sleeper
	logger    *slog.Logger
}

// New constructs a Fetcher, filling unset options with defaults.
func New(opts Options) *Fetcher {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = RealSleeper
	}
	return &Fetcher{
		client:    client,
		userAgent: strings.TrimSpace(opts.UserAgent),
		sleeper:   sleeper,
		logger:    logging.NewComponentLogger(opts.Logger, "fetcher"),
	}
}

// Fetch waits at least minDelay, then performs one GET against rawURL and
// returns the body. Only status 200 counts as success.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, minDelay time.Duration) ([]byte, error) {
	if err := f.sleeper.Sleep(ctx, minDelay); err != nil {
		return nil, err
	}

	logging.WithContext(ctx, f.logger).Info("downloading",
		logging.String("url", rawURL),
		logging.String(logging.FieldEventType, "fetch_started"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "fetch", "build request", rawURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrTransport, "fetch", "get", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorExcerptLimit))
		return nil, services.Wrap(services.ErrTransport, "fetch", "get", rawURL,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt))))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "fetch", "read body", rawURL, err)
	}
	return body, nil
}
