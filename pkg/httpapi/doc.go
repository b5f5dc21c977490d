// Package httpapi exposes the client-facing read surface of the notifier:
// pending and unconfirmed notification polling, confirmation, queue
// statistics and publisher status, served over chi.
package httpapi
