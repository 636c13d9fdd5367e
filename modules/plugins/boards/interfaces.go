package boards

import (
	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/models"
	"github.com/bwmarrin/discordgo"
)

// SourceMessage is a message that may be mirrored, enriched with what rendering needs
type SourceMessage struct {
	*discordgo.Message

	AuthorName      string
	AuthorAvatarURL string
	AuthorColor     int
	ChannelName     string
	UploadLimit     int64

	ReplyAuthorName string
	ReplyJumpURL    string
}

func (m *SourceMessage) JumpURL() string {
	return helpers.GetJumpURL(m.GuildID, m.ChannelID, m.ID)
}

// MirrorFile is an attachment the platform re-uploads with the mirror message
type MirrorFile struct {
	Name        string
	URL         string
	ContentType string
	Size        int
}

// MirrorContent is everything that is posted on a board for one source message
type MirrorContent struct {
	Content string
	Embed   *discordgo.MessageEmbed
	Files   []MirrorFile
}

// ChatPlatform is the part of discord the boards need
type ChatPlatform interface {
	SendMessage(channelID string, content MirrorContent) (messageID string, err error)
	EditMessage(channelID, messageID string, content MirrorContent) error
	// DeleteMessage treats messages that are already gone as deleted
	DeleteMessage(channelID, messageID string) error
	FetchMessage(channelID, messageID string) (*SourceMessage, error)
	ReactionUsers(channelID, messageID, emoji string) ([]string, error)
	Member(guildID, userID string) (*discordgo.Member, error)
	Channel(channelID string) (*discordgo.Channel, error)
	BotUserID() string
}

// ConfigStore reads board configurations.
// Board and Boards return nil without error if nothing is configured.
type ConfigStore interface {
	Board(guildID, emoji string) (*models.BoardConfig, error)
	Boards(guildID string) ([]models.BoardConfig, error)
	DeleteBoardsByChannel(guildID, channelID string) (int, error)
}

// MirrorStore persists MirrorRecords. Get returns nil without error if there is no record.
type MirrorStore interface {
	Get(key models.MirrorKey) (*models.MirrorRecord, error)
	Upsert(record *models.MirrorRecord) error
	Delete(key models.MirrorKey) error
	BySource(guildID, channelID, messageID string) ([]models.MirrorRecord, error)
	DeleteByMirror(guildID string, mirrorMessageIDs []string) (int, error)
	// DeleteByChannel removes records whose source or mirror lives in the channel
	DeleteByChannel(guildID, channelID string) (int, error)
}

// Store is everything the settings, commands and the rest api need
type Store interface {
	ConfigStore
	MirrorStore

	BoardByKind(guildID string, kind models.BoardKind) (*models.BoardConfig, error)
	SaveBoard(board *models.BoardConfig) error
	DeleteBoard(guildID string, kind models.BoardKind) error
	// MirrorsByKind returns the records of a board ordered by count, limit 0 returns all
	MirrorsByKind(guildID string, kind models.BoardKind, limit int) ([]models.MirrorRecord, error)
	DeleteMirrorsByKind(guildID string, kind models.BoardKind) (int, error)
}

// CommandPredicate returns true if the message invokes a bot command
type CommandPredicate func(msg *SourceMessage) bool
