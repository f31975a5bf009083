// Package main hosts the clipflow CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into queue
// store operations: claiming and releasing work, advancing items through the
// pipeline, rendering per-role queue views, SLA reports, and configuration
// scaffolding. It centralizes configuration resolution, worker identity, and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
