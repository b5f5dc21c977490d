// Package notikit is a notification delivery engine. It routes
// application-generated alerts to users over a real-time push channel and a
// durable email channel, honoring per-user, per-application preferences and
// staying functional when the push transport is down.
//
// The packages under pkg/ compose into the delivery pipeline:
//
//   - pkg/notification: core types and storage interfaces
//   - pkg/preferences: the per-user delivery decision
//   - pkg/publisher: dual-mode push fan-out (bus-backed or polling)
//   - pkg/emailqueue: durable, multi-instance-safe email dispatch
//   - pkg/templates: stored email templates with validation and caching
//   - pkg/mailer: mail transports (Postmark, filesystem dev sender)
//   - pkg/notifier: the orchestrator tying the pipeline together
//   - pkg/httpapi: the client-facing read API
//
// pkg/logger, pkg/config, pkg/cache, pkg/pg and pkg/redis carry the ambient
// infrastructure the pipeline runs on.
package notikit
