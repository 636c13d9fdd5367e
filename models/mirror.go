package models

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

const (
	BoardMirrorsTable MongoDbCollection = "board_mirrors"
)

// MirrorRecord links a source message to the message posted on a board
type MirrorRecord struct {
	ID              bson.ObjectId `bson:"_id,omitempty" json:"-"`
	GuildID         string        `bson:"guildid" json:"guild_id"`
	ChannelID       string        `bson:"channelid" json:"channel_id"`
	MessageID       string        `bson:"messageid" json:"message_id"`
	Emoji           string        `bson:"emoji" json:"emoji"`
	Kind            BoardKind     `bson:"kind" json:"kind"`
	AuthorID        string        `bson:"authorid" json:"author_id"`
	MirrorChannelID string        `bson:"mirrorchannelid" json:"mirror_channel_id"`
	MirrorMessageID string        `bson:"mirrormessageid" json:"mirror_message_id"`
	Count           int           `bson:"count" json:"count"`
	CreatedAt       time.Time     `bson:"createdat" json:"created_at"`
	UpdatedAt       time.Time     `bson:"updatedat" json:"updated_at"`
}

// MirrorKey is the identity of a MirrorRecord
type MirrorKey struct {
	GuildID   string
	ChannelID string
	MessageID string
	Emoji     string
}

func (r MirrorRecord) Key() MirrorKey {
	return MirrorKey{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		Emoji:     r.Emoji,
	}
}
