package policy

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var displayCaser = cases.Title(language.English)

// DisplayName renders a platform or user identifier for human-readable
// termination messages.
func DisplayName(value string) string {
	if value == "" {
		return "unknown"
	}
	return displayCaser.String(value)
}

func formatETA(d time.Duration) string {
	if d <= 0 {
		return "a moment"
	}
	d = d.Round(time.Minute)
	if d < time.Minute {
		return "under a minute"
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
