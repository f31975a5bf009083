// Package notifications delivers queue events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Enumerated event types cover the claim lifecycle and SLA alerts
// so the sweeper and CLI can emit consistent, user-friendly messages without
// duplicating HTTP glue.
//
// Extend this package if you need alternative transports; callers depend only
// on the Service interface.
package notifications
