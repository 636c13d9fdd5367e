package boards

import "github.com/bwmarrin/discordgo"

// Event is one of ReactionAdded, ReactionRemoved, ReactionsCleared, MessageDeleted or ChannelDeleted
type Event interface {
	Guild() string
	isEvent()
}

// Reaction is a single user reacting with a board emoji
type Reaction struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	// Emoji in the normalized form, see helpers.NormalizeEmoji
	Emoji string
	// Member is set if the gateway delivered it with the event
	Member *discordgo.Member
}

type ReactionAdded struct {
	Reaction
}

type ReactionRemoved struct {
	Reaction
}

// ReactionsCleared is sent when all reactions of a message are removed
type ReactionsCleared struct {
	GuildID   string
	ChannelID string
	MessageID string
}

type MessageDeleted struct {
	GuildID    string
	ChannelID  string
	MessageIDs []string
}

type ChannelDeleted struct {
	GuildID   string
	ChannelID string
}

func (e ReactionAdded) Guild() string    { return e.GuildID }
func (e ReactionRemoved) Guild() string  { return e.GuildID }
func (e ReactionsCleared) Guild() string { return e.GuildID }
func (e MessageDeleted) Guild() string   { return e.GuildID }
func (e ChannelDeleted) Guild() string   { return e.GuildID }

func (ReactionAdded) isEvent()    {}
func (ReactionRemoved) isEvent()  {}
func (ReactionsCleared) isEvent() {}
func (MessageDeleted) isEvent()   {}
func (ChannelDeleted) isEvent()   {}

func eventName(event Event) string {
	switch event.(type) {
	case ReactionAdded:
		return "reaction_add"
	case ReactionRemoved:
		return "reaction_remove"
	case ReactionsCleared:
		return "reaction_clear"
	case MessageDeleted:
		return "message_delete"
	case ChannelDeleted:
		return "channel_delete"
	}
	return "unknown"
}
