package ticketing

import "strings"

// Component custom IDs. These are stable across restarts so that
// buttons on old messages keep working after a redeploy.
const (
	ComponentClose          = "ticket.close"
	ComponentCloseConfirm   = "ticket.close.confirm"
	ComponentCloseCancel    = "ticket.close.cancel"
	ComponentAddParticipant = "ticket.add_participant"
	ComponentTranscript     = "ticket.transcript"

	componentCreatePrefix = "ticket.create."
)

// CreateComponentID builds the custom ID for a panel button of the
// given category.
func CreateComponentID(categoryID string) string {
	return componentCreatePrefix + categoryID
}

// ParseCreateComponentID extracts the category ID from a panel button
// custom ID. The bool reports whether the ID is a panel button at all.
func ParseCreateComponentID(customID string) (string, bool) {
	if !strings.HasPrefix(customID, componentCreatePrefix) {
		return "", false
	}
	category := strings.TrimPrefix(customID, componentCreatePrefix)
	if category == "" {
		return "", false
	}
	return category, true
}
