package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notikit/notikit/pkg/emailqueue"
	"github.com/notikit/notikit/pkg/httpapi"
	"github.com/notikit/notikit/pkg/mailer"
	"github.com/notikit/notikit/pkg/notification"
	"github.com/notikit/notikit/pkg/notifier"
	"github.com/notikit/notikit/pkg/preferences"
	"github.com/notikit/notikit/pkg/publisher"
	"github.com/notikit/notikit/pkg/templates"
)

func newServer(t *testing.T) (*httptest.Server, *notifier.Notifier, *notification.MemorySettingsStore) {
	t.Helper()
	ctx := context.Background()

	messages := notification.NewMemoryMessageStore()
	deliveries := notification.NewMemoryDeliveryStore()
	settings := notification.NewMemorySettingsStore()
	profiles := notification.NewMemoryProfileStore()

	templateStore := templates.NewMemoryStore()
	_, err := templateStore.Create(ctx, templates.EmailTemplate{
		Key:     notifier.DefaultTemplateKey,
		Subject: "{{.Title}}",
		HTML:    "<p>{{.Content}}</p>",
		Text:    "{{.Content}}",
	})
	require.NoError(t, err)
	engine, err := templates.NewEngine(templateStore)
	require.NoError(t, err)

	coordinator, err := emailqueue.NewCoordinator(
		emailqueue.NewMemoryStorage(), engine, mailer.NewDevSender(t.TempDir()), deliveries)
	require.NoError(t, err)

	resolver, err := preferences.NewResolver(settings, profiles)
	require.NoError(t, err)

	n, err := notifier.New(notifier.Stores{
		Messages:   messages,
		Deliveries: deliveries,
		Settings:   settings,
		Profiles:   profiles,
	}, resolver, publisher.NewPollingPublisher(), coordinator)
	require.NoError(t, err)

	api, err := httpapi.New(n)
	require.NoError(t, err)

	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)
	return srv, n, settings
}

func seedSubscriber(t *testing.T, settings *notification.MemorySettingsStore, username string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, settings.SaveUserSettings(ctx, notification.UserSettings{
		Username:     username,
		Email:        username + "@example.com",
		EmailEnabled: true,
		Frequency:    notification.FrequencyImmediate,
		Timezone:     "UTC",
	}))
	require.NoError(t, settings.SaveApplicationSettings(ctx, notification.ApplicationSettings{
		Username:                username,
		Application:             "backup-service",
		Subscribed:              true,
		PushEnabled:             true,
		EmailEnabled:            true,
		SeverityFloor:           notification.SeverityInfo,
		CriticalBypassesFilters: true,
	}))
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestPendingEndpoint(t *testing.T) {
	t.Parallel()

	srv, n, settings := newServer(t)
	seedSubscriber(t, settings, "alice")

	_, err := n.Send(context.Background(), notifier.SendRequest{
		Application: "backup-service",
		Title:       "Backup failed",
		Content:     "details",
		Severity:    notification.SeverityWarning,
		AlertType:   notification.AlertTypeSystem,
		Recipients:  []string{"alice"},
	})
	require.NoError(t, err)

	var body struct {
		Notifications []notifier.PendingNotification `json:"notifications"`
	}
	status := getJSON(t, srv.URL+"/users/alice/notifications/pending", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "Backup failed", body.Notifications[0].Message.Title)

	t.Run("unknown user gets empty list", func(t *testing.T) {
		var body struct {
			Notifications []notifier.PendingNotification `json:"notifications"`
		}
		status := getJSON(t, srv.URL+"/users/nobody/notifications/pending", &body)
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, body.Notifications)
	})
}

func TestConfirmEndpoint(t *testing.T) {
	t.Parallel()

	srv, n, settings := newServer(t)
	seedSubscriber(t, settings, "alice")

	msg, err := n.Send(context.Background(), notifier.SendRequest{
		Application:          "backup-service",
		Title:                "Restart required",
		Content:              "details",
		Severity:             notification.SeverityCritical,
		AlertType:            notification.AlertTypeMaintenance,
		RequiresConfirmation: true,
		Recipients:           []string{"alice"},
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/users/alice/notifications/"+msg.ID+"/confirm", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("confirming without a delivery returns 404", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/users/nobody/notifications/"+msg.ID+"/confirm", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestQueueStatsEndpoint(t *testing.T) {
	t.Parallel()

	srv, n, settings := newServer(t)
	seedSubscriber(t, settings, "alice")

	_, err := n.Send(context.Background(), notifier.SendRequest{
		Application: "backup-service",
		Title:       "Backup failed",
		Content:     "details",
		Severity:    notification.SeverityWarning,
		AlertType:   notification.AlertTypeSystem,
		Recipients:  []string{"alice"},
	})
	require.NoError(t, err)

	var stats emailqueue.Stats
	status := getJSON(t, srv.URL+"/queue/stats", &stats)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, stats.Pending)
}

func TestPublisherStatusEndpoint(t *testing.T) {
	t.Parallel()

	srv, _, _ := newServer(t)

	var status publisher.Status
	code := getJSON(t, srv.URL+"/publisher/status", &status)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, publisher.ModePolling, status.Mode)
	assert.False(t, status.Connected)
}
