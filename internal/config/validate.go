package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validatePacing(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAPI() error {
	if err := validateHTTPURL("api.base_url", c.API.BaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("api.uploads_url", c.API.UploadsURL); err != nil {
		return err
	}
	if c.API.Proxy != "" {
		parsed, err := url.Parse(c.API.Proxy)
		if err != nil {
			return fmt.Errorf("api.proxy: %w", err)
		}
		switch parsed.Scheme {
		case "socks5", "socks5h", "http", "https":
		default:
			return fmt.Errorf("api.proxy: unsupported scheme %q (use socks5, socks5h, http, or https)", parsed.Scheme)
		}
		if parsed.Host == "" {
			return errors.New("api.proxy: host is required")
		}
	}
	return nil
}

func (c *Config) validatePacing() error {
	if c.Pacing.ListingDelaySeconds < 0 {
		return errors.New("pacing.listing_delay_seconds must be >= 0")
	}
	if c.Pacing.MetadataDelaySeconds < 0 {
		return errors.New("pacing.metadata_delay_seconds must be >= 0")
	}
	if c.Pacing.AssetDelaySeconds < 0 {
		return errors.New("pacing.asset_delay_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.PageSize <= 0 {
		return errors.New("catalog.page_size must be positive")
	}
	for _, rating := range c.Catalog.ContentRatings {
		switch rating {
		case "safe", "suggestive", "erotica", "pornographic":
		default:
			return fmt.Errorf("catalog.content_ratings: unsupported value %q", rating)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s: scheme must be http or https, got %q", field, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s: host is required", field)
	}
	return nil
}
