package preferences_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notikit/notikit/pkg/notification"
	"github.com/notikit/notikit/pkg/preferences"
)

func tod(hour, minute int) notification.TimeOfDay {
	return notification.TimeOfDay{Hour: hour, Minute: minute}
}

func TestInQuietWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		at         notification.TimeOfDay
		start, end notification.TimeOfDay
		want       bool
	}{
		{"wrapping window, late evening", tod(23, 30), tod(22, 0), tod(6, 0), true},
		{"wrapping window, early morning", tod(2, 0), tod(22, 0), tod(6, 0), true},
		{"wrapping window, midday", tod(12, 0), tod(22, 0), tod(6, 0), false},
		{"wrapping window, at start", tod(22, 0), tod(22, 0), tod(6, 0), true},
		{"wrapping window, at end", tod(6, 0), tod(22, 0), tod(6, 0), true},
		{"wrapping window, just before start", tod(21, 59), tod(22, 0), tod(6, 0), false},
		{"plain window, inside", tod(13, 0), tod(12, 0), tod(14, 0), true},
		{"plain window, outside", tod(15, 0), tod(12, 0), tod(14, 0), false},
		{"plain window, at bounds", tod(12, 0), tod(12, 0), tod(14, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, preferences.InQuietWindow(tt.at, tt.start, tt.end))
		})
	}
}
