package boards

import (
	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/metrics"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// ChannelResolver is the part of the ChatPlatform the router needs
type ChannelResolver interface {
	Channel(channelID string) (*discordgo.Channel, error)
	BotUserID() string
}

// Router turns discordgo gateway events into Events and drops everything that can't concern a board.
// It never writes anything.
type Router struct {
	channels ChannelResolver
	configs  ConfigStore
	log      *logrus.Entry
}

func NewRouter(channels ChannelResolver, configs ConfigStore, log *logrus.Entry) *Router {
	return &Router{
		channels: channels,
		configs:  configs,
		log:      log,
	}
}

// Route returns nil if the event should be dropped
func (r *Router) Route(raw interface{}) Event {
	switch event := raw.(type) {
	case *discordgo.MessageReactionAdd:
		if event.MessageReaction == nil {
			return nil
		}
		reaction, ok := r.reaction(event.MessageReaction)
		if !ok {
			return nil
		}
		reaction.Member = event.Member
		return r.routed(ReactionAdded{Reaction: reaction})
	case *discordgo.MessageReactionRemove:
		if event.MessageReaction == nil {
			return nil
		}
		reaction, ok := r.reaction(event.MessageReaction)
		if !ok {
			return nil
		}
		return r.routed(ReactionRemoved{Reaction: reaction})
	case *discordgo.MessageReactionRemoveAll:
		if event.MessageReaction == nil {
			return nil
		}
		if !r.guildTextChannel(event.GuildID, event.ChannelID) {
			return nil
		}
		return r.routed(ReactionsCleared{
			GuildID:   event.GuildID,
			ChannelID: event.ChannelID,
			MessageID: event.MessageID,
		})
	case *discordgo.MessageDelete:
		if event.Message == nil || event.GuildID == "" {
			r.dropped("no_guild")
			return nil
		}
		return r.routed(MessageDeleted{
			GuildID:    event.GuildID,
			ChannelID:  event.ChannelID,
			MessageIDs: []string{event.ID},
		})
	case *discordgo.MessageDeleteBulk:
		if event.GuildID == "" {
			r.dropped("no_guild")
			return nil
		}
		if len(event.Messages) <= 0 {
			return nil
		}
		return r.routed(MessageDeleted{
			GuildID:    event.GuildID,
			ChannelID:  event.ChannelID,
			MessageIDs: append([]string(nil), event.Messages...),
		})
	case *discordgo.ChannelDelete:
		if event.Channel == nil || event.GuildID == "" {
			r.dropped("no_guild")
			return nil
		}
		return r.routed(ChannelDeleted{
			GuildID:   event.GuildID,
			ChannelID: event.ID,
		})
	}
	return nil
}

func (r *Router) reaction(event *discordgo.MessageReaction) (Reaction, bool) {
	if !r.guildTextChannel(event.GuildID, event.ChannelID) {
		return Reaction{}, false
	}

	if event.UserID == r.channels.BotUserID() {
		r.dropped("own_reaction")
		return Reaction{}, false
	}

	emoji := helpers.EmojiFromReaction(event.Emoji)
	if !r.isBoardEmoji(event.GuildID, emoji) {
		r.dropped("no_board_emoji")
		return Reaction{}, false
	}

	return Reaction{
		GuildID:   event.GuildID,
		ChannelID: event.ChannelID,
		MessageID: event.MessageID,
		UserID:    event.UserID,
		Emoji:     emoji,
	}, true
}

func (r *Router) guildTextChannel(guildID, channelID string) bool {
	if guildID == "" {
		r.dropped("no_guild")
		return false
	}

	channel, err := r.channels.Channel(channelID)
	if err != nil {
		r.log.WithFields(logrus.Fields{"guild": guildID, "channel": channelID}).
			WithError(err).Debug("unable to resolve channel")
		r.dropped("unknown_channel")
		return false
	}
	if !helpers.IsTextChannel(channel) {
		r.dropped("no_text_channel")
		return false
	}
	return true
}

func (r *Router) isBoardEmoji(guildID, emoji string) bool {
	if emoji == "" {
		return false
	}

	boards, err := r.configs.Boards(guildID)
	if err != nil {
		r.log.WithField("guild", guildID).WithError(err).Warn("unable to load boards")
		return false
	}
	for _, board := range boards {
		if helpers.SameEmoji(board.Emoji, emoji) {
			return true
		}
	}
	return false
}

func (r *Router) routed(event Event) Event {
	metrics.EventsRouted.WithLabelValues(eventName(event)).Inc()
	return event
}

func (r *Router) dropped(reason string) {
	metrics.EventsDropped.WithLabelValues(reason).Inc()
}
