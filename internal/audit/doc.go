// Package audit defines the append-only event record emitted for every claim,
// release, reassign, extend, transition, and expiry, plus the Publisher
// interface external sinks implement.
//
// The queue store persists every event locally in the same transaction as the
// mutation it describes; publishers are best-effort fan-out on top of that
// durable record. The NATS publisher forwards events to an external sink
// subject when configured.
package audit
