package templates

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/notikit/notikit/pkg/notification"
)

// Severity colors used by built-in email layouts.
const (
	colorRed   = "#dc3545"
	colorAmber = "#ffc107"
	colorBlue  = "#0d6efd"
	colorGray  = "#6c757d"
)

// funcMap returns the helper functions available inside template bodies.
func funcMap() map[string]any {
	return map[string]any{
		"formatDate":    formatDate,
		"lower":         strings.ToLower,
		"upper":         strings.ToUpper,
		"title":         titleCase,
		"severityColor": severityColor,
	}
}

// formatDate renders a timestamp with an explicit Go layout. Both time.Time
// values and preformatted strings are accepted since variable maps carry
// either, depending on the caller.
func formatDate(v any, layout string) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format(layout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format(layout)
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.Format(layout)
		}
		return t
	default:
		return fmt.Sprint(v)
	}
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// severityColor maps a severity to its display color: Critical and Error are
// red, Warning is amber, Info is blue, anything else gray.
func severityColor(v any) string {
	var name string
	switch s := v.(type) {
	case notification.Severity:
		name = s.String()
	case fmt.Stringer:
		name = s.String()
	case string:
		name = s
	default:
		name = fmt.Sprint(v)
	}

	switch strings.ToLower(name) {
	case "critical", "error":
		return colorRed
	case "warning":
		return colorAmber
	case "info":
		return colorBlue
	default:
		return colorGray
	}
}
