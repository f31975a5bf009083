// Package daemon coordinates the long-running clipflow process.
//
// It wires configuration, queue storage, the audit publisher, and the sweep
// loop into a single lifecycle with flock-based locking to prevent multiple
// instances. The daemon exposes queue maintenance helpers and dependency
// health summaries for the CLI.
//
// Keep orchestration logic here: the sweep itself lives in workflow while the
// daemon focuses on startup, shutdown, and high level coordination.
package daemon
