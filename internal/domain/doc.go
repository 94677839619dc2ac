// Package domain holds the core types and interfaces of the store assistant:
// store entities, snapshots and deltas, alert decisions, durable settings,
// per-admin conversation sessions, and the ports implemented by adapters.
package domain
