package boards

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/metrics"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/sethgrid/pester"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const (
	reactionsPageSize = 100
	avatarSize        = "256"
)

// DiscordPlatform is the ChatPlatform on top of a discordgo session.
// REST calls go through a circuit breaker, answers like unknown message or missing access don't trip it.
type DiscordPlatform struct {
	session    *discordgo.Session
	breaker    *gobreaker.CircuitBreaker[interface{}]
	downloader *pester.Client
	log        *logrus.Entry
}

func NewDiscordPlatform(session *discordgo.Session, log *logrus.Entry, breakerFailures uint32) *DiscordPlatform {
	if breakerFailures == 0 {
		breakerFailures = 5
	}

	downloader := pester.New()
	downloader.MaxRetries = 3
	downloader.Backoff = pester.ExponentialBackoff
	downloader.Timeout = 30 * time.Second

	d := &DiscordPlatform{
		session:    session,
		downloader: downloader,
		log:        log,
	}
	d.breaker = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "discord",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || helpers.IsDiscordNotFound(err) || helpers.IsDiscordForbidden(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithField("breaker", name).Warnf("circuit breaker changed from %s to %s", from, to)
		},
	})
	return d
}

func (d *DiscordPlatform) execute(op string, call func() (interface{}, error)) (interface{}, error) {
	result, err := d.breaker.Execute(call)
	if err != nil {
		metrics.PlatformFailures.WithLabelValues(op).Inc()
		return nil, classifyError(op, err)
	}
	return result, nil
}

func classifyError(op string, err error) error {
	switch {
	case helpers.IsDiscordNotFound(err):
		return errors.Wrap(ErrNotFound, err.Error())
	case helpers.IsDiscordForbidden(err):
		return errors.Wrap(ErrForbidden, err.Error())
	case err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests:
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return errors.Wrap(err, op+" failed")
}

func (d *DiscordPlatform) BotUserID() string {
	if d.session.State == nil || d.session.State.User == nil {
		return ""
	}
	return d.session.State.User.ID
}

func (d *DiscordPlatform) SendMessage(channelID string, content MirrorContent) (string, error) {
	send := &discordgo.MessageSend{
		Content:         content.Content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}
	if content.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{content.Embed}
	}
	for _, file := range content.Files {
		data, err := d.download(file)
		if err != nil {
			d.log.WithField("url", file.URL).WithError(err).Warn("unable to download attachment, skipping it")
			continue
		}
		send.Files = append(send.Files, &discordgo.File{
			Name:        file.Name,
			ContentType: file.ContentType,
			Reader:      bytes.NewReader(data),
		})
	}

	result, err := d.execute("send", func() (interface{}, error) {
		return d.session.ChannelMessageSendComplex(channelID, send)
	})
	if err != nil {
		return "", err
	}
	return result.(*discordgo.Message).ID, nil
}

func (d *DiscordPlatform) download(file MirrorFile) ([]byte, error) {
	response, err := d.downloader.Get(file.URL)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d", response.StatusCode)
	}
	return io.ReadAll(response.Body)
}

func (d *DiscordPlatform) EditMessage(channelID, messageID string, content MirrorContent) error {
	edit := discordgo.NewMessageEdit(channelID, messageID).SetContent(content.Content)
	if content.Embed != nil {
		edit.SetEmbed(content.Embed)
	}
	edit.AllowedMentions = &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}

	_, err := d.execute("edit", func() (interface{}, error) {
		return d.session.ChannelMessageEditComplex(edit)
	})
	return err
}

func (d *DiscordPlatform) DeleteMessage(channelID, messageID string) error {
	_, err := d.execute("delete", func() (interface{}, error) {
		return nil, d.session.ChannelMessageDelete(channelID, messageID)
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (d *DiscordPlatform) Channel(channelID string) (*discordgo.Channel, error) {
	if channel, err := d.session.State.Channel(channelID); err == nil {
		return channel, nil
	}
	result, err := d.execute("channel", func() (interface{}, error) {
		return d.session.Channel(channelID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*discordgo.Channel), nil
}

func (d *DiscordPlatform) Member(guildID, userID string) (*discordgo.Member, error) {
	if member, err := d.session.State.Member(guildID, userID); err == nil {
		return member, nil
	}
	result, err := d.execute("member", func() (interface{}, error) {
		return d.session.GuildMember(guildID, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*discordgo.Member), nil
}

func (d *DiscordPlatform) ReactionUsers(channelID, messageID, emoji string) ([]string, error) {
	emojiID := helpers.EmojiAPIName(emoji)
	userIDs := make([]string, 0)
	var after string
	for {
		result, err := d.execute("reactions", func() (interface{}, error) {
			return d.session.MessageReactions(channelID, messageID, emojiID, reactionsPageSize, "", after)
		})
		if err != nil {
			return nil, err
		}
		users := result.([]*discordgo.User)
		for _, user := range users {
			userIDs = append(userIDs, user.ID)
		}
		if len(users) < reactionsPageSize {
			return userIDs, nil
		}
		after = users[len(users)-1].ID
	}
}

func (d *DiscordPlatform) FetchMessage(channelID, messageID string) (*SourceMessage, error) {
	message, err := d.session.State.Message(channelID, messageID)
	if err != nil {
		result, err := d.execute("message", func() (interface{}, error) {
			return d.session.ChannelMessage(channelID, messageID)
		})
		if err != nil {
			return nil, err
		}
		message = result.(*discordgo.Message)
	}

	copied := *message
	message = &copied
	source := &SourceMessage{
		Message:     message,
		UploadLimit: helpers.GetUploadLimit(nil),
	}

	channel, err := d.Channel(channelID)
	if err == nil {
		source.ChannelName = channel.Name
		if source.GuildID == "" {
			source.GuildID = channel.GuildID
		}
	}

	if guild, err := d.session.State.Guild(source.GuildID); err == nil {
		source.UploadLimit = helpers.GetUploadLimit(guild)
	}

	if message.Author != nil {
		member := message.Member
		if member == nil || member.User == nil {
			member, _ = d.Member(source.GuildID, message.Author.ID)
		}
		source.AuthorName = helpers.GetDisplayName(member, message.Author)
		source.AuthorAvatarURL = message.Author.AvatarURL(avatarSize)
		if member != nil && member.User != nil && member.Avatar != "" && member.GuildID != "" {
			source.AuthorAvatarURL = member.AvatarURL(avatarSize)
		}
		source.AuthorColor = d.session.State.UserColor(message.Author.ID, channelID)
	}

	if reply := message.ReferencedMessage; reply != nil && reply.Author != nil {
		replyMember, _ := d.session.State.Member(source.GuildID, reply.Author.ID)
		source.ReplyAuthorName = helpers.GetDisplayName(replyMember, reply.Author)
		replyChannelID := reply.ChannelID
		if replyChannelID == "" {
			replyChannelID = channelID
		}
		source.ReplyJumpURL = helpers.GetJumpURL(source.GuildID, replyChannelID, reply.ID)
	}

	return source, nil
}
