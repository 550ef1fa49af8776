package progress

import (
	"fmt"
	"time"
)

// FormatETA renders a countdown for display.
func FormatETA(d time.Duration) string {
	secs := int(d / time.Second)
	switch {
	case secs <= 0:
		return "Almost done..."
	case secs < 60:
		return fmt.Sprintf("~%d seconds", secs)
	default:
		return fmt.Sprintf("~%dm %ds", secs/60, secs%60)
	}
}
