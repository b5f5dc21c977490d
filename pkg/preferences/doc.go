// Package preferences decides whether and how a user receives a given
// notification.
//
// The Resolver evaluates, in order: the user's subscription to the source
// application, the severity floor (with an optional critical-severity
// bypass), the alert-type allow-list, and the user's quiet-hours window in
// their own timezone. Critical notifications skip quiet hours. The result is
// a Decision carrying the enabled channel set; an empty set means the
// notification is not delivered at all.
//
// Decisions are pure given the stored settings and are recomputed for every
// notification.
package preferences
