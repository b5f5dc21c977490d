package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notikit/notikit/pkg/logger"
)

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestUsername(t *testing.T) {
	attr := logger.Username("alice")
	require.Equal(t, "username", attr.Key)
	assert.Equal(t, "alice", attr.Value.Any())
}

func TestNotificationID(t *testing.T) {
	attr := logger.NotificationID("n-1")
	require.Equal(t, "notification_id", attr.Key)
	assert.Equal(t, "n-1", attr.Value.Any())

	empty := logger.NotificationID(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestApplication(t *testing.T) {
	attr := logger.Application("backup-service")
	require.Equal(t, "application", attr.Key)
	assert.Equal(t, "backup-service", attr.Value.Any())
}

func TestInstance(t *testing.T) {
	attr := logger.Instance("worker-1")
	require.Equal(t, "instance", attr.Key)
	assert.Equal(t, "worker-1", attr.Value.Any())
}

func TestRetryCount(t *testing.T) {
	attr := logger.RetryCount(3)
	require.Equal(t, "retry_count", attr.Key)
	assert.Equal(t, int64(3), attr.Value.Any())
}

func TestComponent(t *testing.T) {
	attr := logger.Component("emailqueue")
	require.Equal(t, "component", attr.Key)
	assert.Equal(t, "emailqueue", attr.Value.Any())
}
