package whatsapp

import (
	"fmt"
	"strings"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
)

// itemizedErrorLimit caps how many errors are listed individually before the
// message falls back to the count alone.
const itemizedErrorLimit = 3

// FormatMessage renders a coordinator event as a WhatsApp status update.
func FormatMessage(event domain.CoordinatorEvent) string {
	id := event.CoordinatorID
	if id == "" {
		id = "Unknown"
	}
	status := event.Status
	if status == "" {
		status = "unknown"
	}

	lines := []string{
		statusEmoji(status) + " *Daily Coordinator Update*",
		"",
		"*ID:* " + id,
		"*Status:* " + strings.ToUpper(status),
		fmt.Sprintf("*Tasks:* %d", event.TasksProcessed),
	}

	if len(event.Errors) > 0 {
		lines = append(lines, fmt.Sprintf("*Errors:* %d", len(event.Errors)))
		if len(event.Errors) <= itemizedErrorLimit {
			for _, message := range event.Errors {
				lines = append(lines, "  • "+message)
			}
		}
	}

	if event.Timestamp != "" {
		lines = append(lines, "*Time:* "+event.Timestamp)
	}

	return strings.Join(lines, "\n")
}

func statusEmoji(status string) string {
	switch status {
	case domain.StatusSuccess:
		return "✅"
	case domain.StatusFailed:
		return "❌"
	case domain.StatusPartial:
		return "⚠️"
	default:
		return "ℹ️"
	}
}
