// Package config loads, normalizes, and validates mangarchive configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file when present, and honours
// environment fallbacks such as MANGARCHIVE_PROXY. The Config type centralizes
// every knob the pipeline and CLI need: artifact and state directories, catalog
// endpoints, request pacing, listing parameters, and the renderer command.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
