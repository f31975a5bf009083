// Package config loads, normalizes, and validates clipflow configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLIPFLOW_WORKER and CLIPFLOW_NTFY_TOPIC. The Config type centralizes every
// knob the CLI and daemon need: claim TTLs per role, SLA deadlines per stage,
// priority weights, sweep cadence, and notification/audit transports.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
