package entities

import (
	"fmt"
	"strings"

	"github.com/flimando/porter/pkg/custom"
)

// Ticket is one tracked support conversation. It is keyed by
// (GuildID, ChannelID); the channel is the ticket's backing resource.
type Ticket struct {
	// GuildID is the guild the ticket belongs to.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// ChannelID is the channel backing the ticket.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// OwnerID is the user that opened the ticket.
	OwnerID string `json:"owner_id" bson:"owner_id"`

	// CategoryLabel is the display name of the category the ticket was
	// created under. The label rather than the category ID is persisted, so
	// a renamed or deleted category does not orphan the ticket.
	CategoryLabel string `json:"category_label" bson:"category_label"`

	// ControlMessageID is the message carrying the close / add-user /
	// transcript buttons. Set once shortly after creation; cleared when the
	// message is found to be gone.
	ControlMessageID string `json:"control_message_id,omitempty" bson:"control_message_id,omitempty"`

	// CreatedAt is when the ticket was opened.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`
}

// ChannelName builds the channel name a new ticket channel is created with.
func ChannelName(username, categoryID string) string {
	name := fmt.Sprintf("ticket-%s-%s", username, categoryID)
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}
