package entities

// Panel is the standing message users open tickets from. One per guild.
type Panel struct {
	// GuildID is the guild the panel belongs to.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// ChannelID is the channel the panel message lives in.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// MessageID is the panel message itself.
	MessageID string `json:"message_id" bson:"message_id"`
}
