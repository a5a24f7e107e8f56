package entities

// Embed accent colours used by the compiled-in defaults.
const (
	ColorBlue  = 0x3498DB
	ColorRed   = 0xE74C3C
	ColorGreen = 0x2ECC71
)

// Message template keys. The values support {placeholder} substitution via
// messages.Render.
const (
	MsgPanelTitle        = "panel_title"
	MsgPanelDescription  = "panel_description"
	MsgMaxTicketsReached = "max_tickets_reached"
	MsgTicketCreated     = "ticket_created"
	MsgNoPermission      = "no_permission"
	MsgNotATicket        = "not_a_ticket"
	MsgTicketClosed      = "ticket_closed"
	MsgUserAdded         = "user_added"
	MsgAddUserPrompt     = "add_user_instruction"
	MsgAddUserTimeout    = "add_user_timeout"
	MsgAddUserNoInput    = "add_user_no_input"
	MsgAddUserInvalid    = "add_user_invalid"
	MsgTicketControls    = "ticket_controls"
)

// GuildConfig is the per-guild ticketing configuration.
type GuildConfig struct {
	// ID is the guild ID.
	ID string `json:"guild_id" bson:"guild_id"`

	// Enabled is whether ticketing is enabled for the guild.
	Enabled bool `json:"enabled" bson:"enabled"`

	// MaxTicketsPerUser is the number of tickets a single user may have open
	// at once.
	MaxTicketsPerUser int `json:"max_tickets_per_user" bson:"max_tickets_per_user"`

	// AutoCloseHours closes tickets with no activity for this many hours.
	// Zero disables the sweep.
	AutoCloseHours int `json:"auto_close_time" bson:"auto_close_time"`

	// StaffRoleIDs are the roles granted access to every ticket.
	StaffRoleIDs []string `json:"staff_role_ids" bson:"staff_role_ids"`

	// LogChannelID is the channel audit embeds are sent to. Empty disables
	// audit logging.
	LogChannelID string `json:"log_channel_id,omitempty" bson:"log_channel_id,omitempty"`

	// TranscriptEnabled gates the transcript export feature.
	TranscriptEnabled bool `json:"transcript_enabled" bson:"transcript_enabled"`

	// Categories are the ticket categories in panel button order.
	Categories CategorySet `json:"categories" bson:"categories"`

	// Messages are the user-facing message templates.
	Messages map[string]string `json:"messages" bson:"messages"`
}

// HasStaffRole reports whether any of the given role IDs is a configured
// staff role.
func (c *GuildConfig) HasStaffRole(roleIDs []string) bool {
	for _, have := range roleIDs {
		for _, want := range c.StaffRoleIDs {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Message returns the template for the given key, falling back to the
// compiled-in default when the guild has no override.
func (c *GuildConfig) Message(key string) string {
	if c.Messages != nil {
		if msg, ok := c.Messages[key]; ok && msg != "" {
			return msg
		}
	}
	return defaultMessages()[key]
}

// DefaultGuildConfig returns the compiled-in configuration a guild starts
// with on first access: ticketing enabled, three built-in categories and the
// default message templates.
func DefaultGuildConfig(guildID string) *GuildConfig {
	return &GuildConfig{
		ID:                guildID,
		Enabled:           true,
		MaxTicketsPerUser: 3,
		AutoCloseHours:    24,
		StaffRoleIDs:      []string{},
		TranscriptEnabled: true,
		Categories: NewCategorySet(
			Category{
				ID:          "support",
				Name:        "Support",
				Emoji:       "\U0001F6E0️", // hammer and wrench
				Description: "General help and support",
				StaffPing:   true,
				Embed: CategoryEmbed{
					Title:       "Support Ticket",
					Description: "Welcome to your support ticket!\nA team member will be with you shortly.",
					Color:       ColorBlue,
				},
			},
			Category{
				ID:          "bug",
				Name:        "Bug Report",
				Emoji:       "\U0001F41B", // bug
				Description: "Report bugs and errors",
				StaffPing:   true,
				Embed: CategoryEmbed{
					Title:       "Bug Report",
					Description: "Thanks for your bug report!\nPlease describe the problem in detail.",
					Color:       ColorRed,
				},
			},
			Category{
				ID:          "feature",
				Name:        "Feature Request",
				Emoji:       "\U0001F4A1", // light bulb
				Description: "Suggest new features",
				StaffPing:   false,
				Embed: CategoryEmbed{
					Title:       "Feature Request",
					Description: "Thanks for your suggestion!\nWe will look into it.",
					Color:       ColorGreen,
				},
			},
		),
		Messages: defaultMessages(),
	}
}

func defaultMessages() map[string]string {
	return map[string]string{
		MsgPanelTitle:        "Ticket System",
		MsgPanelDescription:  "Pick a category to open a ticket:",
		MsgMaxTicketsReached: "You already have the maximum number of open tickets ({max}).",
		MsgTicketCreated:     "Your {category} ticket has been created: {channel}",
		MsgNoPermission:      "You do not have permission for this action.",
		MsgNotATicket:        "This channel is not a ticket.",
		MsgTicketClosed:      "Closing this ticket...",
		MsgUserAdded:         "{user} has been added to the ticket.",
		MsgAddUserPrompt:     "Reply to this message with the users you want to add.",
		MsgAddUserTimeout:    "Timed out waiting for a reply. Please try again.",
		MsgAddUserNoInput:    "No users given. Provide at least one user.",
		MsgAddUserInvalid:    "No valid users found. Use mentions (@User) or raw user IDs.",
		MsgTicketControls:    "Use the buttons below to manage this ticket.",
	}
}
