package models

import (
	"github.com/globalsign/mgo/bson"
)

const (
	BoardsTable MongoDbCollection = "boards"
)

// BoardKind tells the star and the clown pipelines apart
type BoardKind string

const (
	BoardKindStar  BoardKind = "star"
	BoardKindClown BoardKind = "clown"
)

func (k BoardKind) Valid() bool {
	return k == BoardKindStar || k == BoardKindClown
}

func (k BoardKind) DefaultEmoji() string {
	if k == BoardKindClown {
		return "🤡"
	}
	return "⭐"
}

// BoardConfig is the configuration of one board of a guild
type BoardConfig struct {
	ID              bson.ObjectId `bson:"_id,omitempty" json:"-"`
	GuildID         string        `bson:"guildid" json:"guild_id"`
	Kind            BoardKind     `bson:"kind" json:"kind"`
	ChannelID       string        `bson:"channelid" json:"channel_id"`
	Emoji           string        `bson:"emoji" json:"emoji"`
	Threshold       int           `bson:"threshold" json:"threshold"`
	Color           string        `bson:"color" json:"color,omitempty"`
	SelfStar        bool          `bson:"selfstar" json:"self_star"`
	Locked          bool          `bson:"locked" json:"locked"`
	ShowTimestamp   bool          `bson:"showtimestamp" json:"show_timestamp"`
	ShowAttachments bool          `bson:"showattachments" json:"show_attachments"`
	ShowJumpURL     bool          `bson:"showjumpurl" json:"show_jump_url"`
	IgnoreEntries   []string      `bson:"ignoreentries" json:"ignore_entries"`
}

// NewBoardConfig returns a board with the defaults of a freshly set board
func NewBoardConfig(guildID string, kind BoardKind, channelID, emoji string, threshold int) BoardConfig {
	if threshold < 1 {
		threshold = 1
	}
	return BoardConfig{
		GuildID:         guildID,
		Kind:            kind,
		ChannelID:       channelID,
		Emoji:           emoji,
		Threshold:       threshold,
		SelfStar:        true,
		ShowTimestamp:   true,
		ShowAttachments: true,
		ShowJumpURL:     true,
		IgnoreEntries:   []string{},
	}
}

// IsIgnored returns true if any of the snowflakes is on the ignore list
func (b BoardConfig) IsIgnored(snowflakes ...string) bool {
	for _, entry := range b.IgnoreEntries {
		for _, snowflake := range snowflakes {
			if snowflake != "" && entry == snowflake {
				return true
			}
		}
	}
	return false
}
