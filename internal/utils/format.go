package utils

import (
	"fmt"
	"time"
)

// FormatAccountCreated renders a creation timestamp the way the clients expect
// it, e.g. "August 30th 2026, 3:04:05 pm".
func FormatAccountCreated(t time.Time) string {
	day := t.Day()

	return fmt.Sprintf("%s %d%s %d, %s",
		t.Month().String(),
		day,
		ordinalSuffix(day),
		t.Year(),
		t.Format("3:04:05 pm"),
	)
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}

	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
