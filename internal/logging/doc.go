// Package logging builds slog loggers for the clipflow CLI and daemon.
//
// Two output formats are supported: a human-oriented console format used by
// interactive commands and a JSON format for the daemon log file. Attribute
// helpers keep call sites terse, and component loggers attach a stable
// "component" attribute so sweep, claim, and notification logs can be
// filtered apart.
package logging
