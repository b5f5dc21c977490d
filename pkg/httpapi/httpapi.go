package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/notikit/notikit/pkg/logger"
	"github.com/notikit/notikit/pkg/notification"
	"github.com/notikit/notikit/pkg/notifier"
)

// API is the client-facing read surface: pending and unconfirmed
// notifications, confirmations, and operational snapshots.
type API struct {
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// Option configures the API.
type Option func(*API)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates the API around a notifier.
func New(n *notifier.Notifier, opts ...Option) (*API, error) {
	if n == nil {
		return nil, errors.New("httpapi: notifier cannot be nil")
	}
	a := &API{
		notifier: n,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Router builds the chi router for the API.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/users/{username}/notifications", func(r chi.Router) {
		r.Get("/pending", a.handlePending)
		r.Get("/unconfirmed", a.handleUnconfirmed)
		r.Post("/{notificationID}/confirm", a.handleConfirm)
	})
	r.Get("/queue/stats", a.handleQueueStats)
	r.Get("/publisher/status", a.handlePublisherStatus)

	return r
}

func (a *API) handlePending(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	pending, err := a.notifier.Pending(r.Context(), username)
	if err != nil {
		a.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"notifications": pending})
}

func (a *API) handleUnconfirmed(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	unconfirmed, err := a.notifier.Unconfirmed(r.Context(), username)
	if err != nil {
		a.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"notifications": unconfirmed})
}

func (a *API) handleConfirm(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	notificationID := chi.URLParam(r, "notificationID")

	if err := a.notifier.Confirm(r.Context(), notificationID, username); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			a.respondError(w, r, http.StatusNotFound, err)
			return
		}
		a.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"confirmed": true})
}

func (a *API) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.notifier.QueueStats(r.Context())
	if err != nil {
		a.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	a.respondJSON(w, http.StatusOK, stats)
}

func (a *API) handlePublisherStatus(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, a.notifier.PublisherStatus())
}

func (a *API) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("failed to encode response", logger.Error(err))
	}
}

func (a *API) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		a.logger.ErrorContext(r.Context(), "request failed",
			logger.Error(err),
			slog.String("path", r.URL.Path))
	}
	a.respondJSON(w, status, map[string]any{"error": err.Error()})
}
