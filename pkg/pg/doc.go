// Package pg provides PostgreSQL connectivity for the notification engine:
// pooled connections with startup retry, goose-driven schema migrations, and
// a health probe. Error helpers normalize pgx error inspection for callers.
package pg
