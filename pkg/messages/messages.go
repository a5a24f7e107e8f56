// Package messages holds the user facing strings for the bot, and the
// renderer for the per-guild configurable message templates.
package messages

import "strings"

const (
	// ErrUserErrorProcessing is sent to the user when a command fails for a
	// reason we do not want to expose.
	ErrUserErrorProcessing = "Something went wrong while processing that. Please try again."

	// ErrNotAdministrator is sent when a non-administrator invokes an
	// admin-gated command.
	ErrNotAdministrator = "You must be an administrator to use this command."

	// ErrTicketingDisabled is sent when ticketing is disabled for the guild.
	ErrTicketingDisabled = "Ticketing is disabled on this server."
)

// Render substitutes {placeholder} markers in a template with the provided
// values. Unknown placeholders are left untouched so a guild admin can see
// which marker in their template did not resolve.
func Render(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
