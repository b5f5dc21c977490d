// Package notification defines the domain model of the delivery engine:
// notification messages, per-channel delivery records, user preferences and
// application profiles, together with the storage interfaces the engine
// consumes and in-memory implementations of each.
//
// The model follows a few rules the rest of the engine relies on:
//
//   - Message is immutable once created; retention deactivates rather than
//     deletes.
//   - At most one Delivery exists per (notification, user, channel), and a
//     record only ever moves through the documented status transitions
//     (Pending → Delivered|Failed → Confirmed).
//   - ErrNotFound is distinct from generic storage failure so callers can
//     distinguish "give up" from "retry".
//
// Persistent implementations of the storage interfaces live outside this
// module; the in-memory stores here back tests and local development.
package notification
