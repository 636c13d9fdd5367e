package boards

import (
	"context"
	"time"

	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/metrics"
	"github.com/Seklfreak/starlight/models"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type AggregatorOptions struct {
	// SuppressGrace is how long an own delete is remembered, defaults to 30 seconds
	SuppressGrace time.Duration
	// IsCommand filters out messages invoking bot commands
	IsCommand CommandPredicate
}

// Aggregator keeps the mirror messages of all boards in sync with the reactions on their source messages.
// Events of one guild are handled one after another, guilds are independent.
type Aggregator struct {
	platform   ChatPlatform
	configs    ConfigStore
	mirrors    MirrorStore
	isCommand  CommandPredicate
	locks      *guildLocks
	suppressed *deleteSuppressor
	log        *logrus.Entry
	now        func() time.Time
}

func NewAggregator(platform ChatPlatform, configs ConfigStore, mirrors MirrorStore, log *logrus.Entry, options AggregatorOptions) *Aggregator {
	return &Aggregator{
		platform:   platform,
		configs:    configs,
		mirrors:    mirrors,
		isCommand:  options.IsCommand,
		locks:      newGuildLocks(),
		suppressed: newDeleteSuppressor(options.SuppressGrace),
		log:        log,
		now:        time.Now,
	}
}

// Run expires stale suppressed deletes until ctx is done
func (a *Aggregator) Run(ctx context.Context) {
	a.suppressed.run(ctx)
}

// LockGuild acquires the lock events of guildID are handled under
func (a *Aggregator) LockGuild(guildID string) (unlock func()) {
	return a.locks.lock(guildID)
}

// Handle applies event, errors are logged and never returned
func (a *Aggregator) Handle(ctx context.Context, event Event) {
	if event == nil || ctx.Err() != nil {
		return
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			metrics.HandlePanics.Inc()
			helpers.ReportPanic(
				a.log.WithFields(logrus.Fields{"guild": event.Guild(), "event": eventName(event)}),
				recovered,
				map[string]string{"GuildID": event.Guild(), "Event": eventName(event)},
			)
		}
	}()

	switch event := event.(type) {
	case ReactionAdded:
		a.handleReaction(event.Reaction, true)
	case ReactionRemoved:
		a.handleReaction(event.Reaction, false)
	case ReactionsCleared:
		a.handleCleared(event)
	case MessageDeleted:
		a.handleDeleted(event)
	case ChannelDeleted:
		a.handleChannelDeleted(event)
	}
}

func (a *Aggregator) handleReaction(reaction Reaction, added bool) {
	log := a.log.WithFields(logrus.Fields{
		"guild":   reaction.GuildID,
		"channel": reaction.ChannelID,
		"message": reaction.MessageID,
		"emoji":   reaction.Emoji,
	})

	board, err := a.configs.Board(reaction.GuildID, reaction.Emoji)
	if err != nil {
		log.WithError(err).Error("unable to load board")
		return
	}
	if board == nil || board.Locked || board.ChannelID == "" {
		return
	}

	snowflakes := []string{reaction.UserID, reaction.ChannelID}
	member := reaction.Member
	if member == nil {
		member, err = a.platform.Member(reaction.GuildID, reaction.UserID)
		if err != nil {
			// members who left can still take their reaction back
			if added {
				log.WithField("user", reaction.UserID).WithError(err).Debug("unable to resolve reacting member")
				return
			}
			member = nil
		}
	}
	if member != nil {
		snowflakes = append(snowflakes, member.Roles...)
	}
	if board.IsIgnored(snowflakes...) {
		return
	}

	if !a.nsfwAllowed(log, board, reaction.ChannelID) {
		return
	}

	unlock := a.locks.lock(reaction.GuildID)
	defer unlock()

	key := models.MirrorKey{
		GuildID:   reaction.GuildID,
		ChannelID: reaction.ChannelID,
		MessageID: reaction.MessageID,
		Emoji:     board.Emoji,
	}
	record, err := a.mirrors.Get(key)
	if err != nil {
		log.WithError(err).Error("unable to load mirror record")
		return
	}
	if !added && record == nil {
		return
	}

	a.reconcile(log, board, key, record)
}

// nsfwAllowed stops messages from nsfw channels from being mirrored into sfw boards
func (a *Aggregator) nsfwAllowed(log *logrus.Entry, board *models.BoardConfig, channelID string) bool {
	source, err := a.platform.Channel(channelID)
	if err != nil {
		log.WithError(err).Debug("unable to resolve source channel")
		return false
	}
	if !source.NSFW {
		return true
	}
	target, err := a.platform.Channel(board.ChannelID)
	if err != nil {
		log.WithError(err).Debug("unable to resolve board channel")
		return false
	}
	return target.NSFW
}

// reconcile brings the mirror of key in line with the current reactions, the guild lock has to be held
func (a *Aggregator) reconcile(log *logrus.Entry, board *models.BoardConfig, key models.MirrorKey, record *models.MirrorRecord) {
	msg, err := a.platform.FetchMessage(key.ChannelID, key.MessageID)
	if err != nil {
		log.WithError(err).Warn("unable to fetch source message")
		return
	}
	if msg.Author == nil || msg.Author.ID == a.platform.BotUserID() {
		return
	}
	if a.isCommand != nil && a.isCommand(msg) {
		return
	}
	if record == nil && !isBoardable(msg) {
		return
	}

	count, err := a.qualifyingCount(log, board, key.GuildID, msg)
	if err != nil {
		log.WithError(err).Warn("unable to fetch reactions")
		return
	}
	log = log.WithField("count", count)

	switch {
	case record == nil:
		if count >= board.Threshold {
			a.createMirror(log, board, key, msg, count)
		}
	case count == 0:
		a.removeMirror(log, record)
	default:
		a.updateMirror(log, board, record, msg, count)
	}
}

// isBoardable reports whether msg may get a new mirror
func isBoardable(msg *SourceMessage) bool {
	if msg.Content == "" && len(msg.Attachments) <= 0 {
		return false
	}
	return msg.Type == discordgo.MessageTypeDefault || msg.Type == discordgo.MessageTypeReply
}

// qualifyingCount counts the distinct users reacting with the board emoji,
// the bot and ignored members never count and the author only if the board allows self stars
func (a *Aggregator) qualifyingCount(log *logrus.Entry, board *models.BoardConfig, guildID string, msg *SourceMessage) (int, error) {
	userIDs, err := a.platform.ReactionUsers(msg.ChannelID, msg.ID, board.Emoji)
	if err != nil {
		return 0, err
	}

	botID := a.platform.BotUserID()
	counted := make(map[string]bool, len(userIDs))
	for _, userID := range userIDs {
		if userID == botID || counted[userID] {
			continue
		}
		if !board.SelfStar && userID == msg.Author.ID {
			continue
		}
		if a.isIgnoredReactor(log, board, guildID, userID) {
			continue
		}
		counted[userID] = true
	}
	return len(counted), nil
}

// isIgnoredReactor checks the user id and, if the board ignores anything, the roles of the member
func (a *Aggregator) isIgnoredReactor(log *logrus.Entry, board *models.BoardConfig, guildID, userID string) bool {
	if len(board.IgnoreEntries) <= 0 {
		return false
	}
	if board.IsIgnored(userID) {
		return true
	}
	member, err := a.platform.Member(guildID, userID)
	if err != nil {
		log.WithField("user", userID).WithError(err).Debug("unable to resolve reactor, checking user id only")
		return false
	}
	return board.IsIgnored(member.Roles...)
}

func (a *Aggregator) createMirror(log *logrus.Entry, board *models.BoardConfig, key models.MirrorKey, msg *SourceMessage, count int) {
	mirrorID, err := a.platform.SendMessage(board.ChannelID, Render(*board, msg, count))
	if err != nil {
		log.WithError(err).Warn("unable to post mirror message")
		return
	}

	now := a.now()
	record := &models.MirrorRecord{
		GuildID:         key.GuildID,
		ChannelID:       key.ChannelID,
		MessageID:       key.MessageID,
		Emoji:           key.Emoji,
		Kind:            board.Kind,
		AuthorID:        msg.Author.ID,
		MirrorChannelID: board.ChannelID,
		MirrorMessageID: mirrorID,
		Count:           count,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err = a.mirrors.Upsert(record); err != nil {
		log.WithError(err).Error("unable to save mirror record, removing mirror message")
		a.deleteMirrorMessage(log, record)
		return
	}
	metrics.MirrorsCreated.WithLabelValues(string(board.Kind)).Inc()
	log.WithField("mirror", mirrorID).Debug("posted mirror message")
}

func (a *Aggregator) updateMirror(log *logrus.Entry, board *models.BoardConfig, record *models.MirrorRecord, msg *SourceMessage, count int) {
	err := a.platform.EditMessage(record.MirrorChannelID, record.MirrorMessageID, Render(*board, msg, count))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.WithField("mirror", record.MirrorMessageID).Info("mirror message is gone, dropping record")
			a.dropRecord(log, record)
			return
		}
		log.WithError(err).Warn("unable to edit mirror message")
		return
	}

	record.Count = count
	record.UpdatedAt = a.now()
	if err = a.mirrors.Upsert(record); err != nil {
		log.WithError(err).Error("unable to update mirror record")
		return
	}
	metrics.MirrorsEdited.WithLabelValues(string(record.Kind)).Inc()
}

// removeMirror deletes the mirror message and its record, the record stays if the message could not be deleted
func (a *Aggregator) removeMirror(log *logrus.Entry, record *models.MirrorRecord) {
	if !a.deleteMirrorMessage(log, record) {
		return
	}
	a.dropRecord(log, record)
}

// deleteMirrorMessage deletes the mirror message of record without reacting to the resulting delete event
func (a *Aggregator) deleteMirrorMessage(log *logrus.Entry, record *models.MirrorRecord) bool {
	a.suppressed.add(record.MirrorMessageID)
	err := a.platform.DeleteMessage(record.MirrorChannelID, record.MirrorMessageID)
	if err != nil {
		a.suppressed.remove(record.MirrorMessageID)
		log.WithField("mirror", record.MirrorMessageID).WithError(err).Warn("unable to delete mirror message")
		return false
	}
	return true
}

func (a *Aggregator) dropRecord(log *logrus.Entry, record *models.MirrorRecord) {
	if err := a.mirrors.Delete(record.Key()); err != nil {
		log.WithError(err).Error("unable to delete mirror record")
		return
	}
	metrics.MirrorsDeleted.WithLabelValues(string(record.Kind)).Inc()
}

func (a *Aggregator) handleCleared(event ReactionsCleared) {
	log := a.log.WithFields(logrus.Fields{
		"guild":   event.GuildID,
		"channel": event.ChannelID,
		"message": event.MessageID,
	})

	unlock := a.locks.lock(event.GuildID)
	defer unlock()

	records, err := a.mirrors.BySource(event.GuildID, event.ChannelID, event.MessageID)
	if err != nil {
		log.WithError(err).Error("unable to load mirror records")
		return
	}

	for i := range records {
		record := &records[i]
		board, err := a.configs.Board(event.GuildID, record.Emoji)
		if err != nil {
			log.WithError(err).Error("unable to load board")
			continue
		}
		if board != nil && board.Locked {
			continue
		}
		a.removeMirror(log.WithField("emoji", record.Emoji), record)
	}
}

func (a *Aggregator) handleDeleted(event MessageDeleted) {
	messageIDs := make([]string, 0, len(event.MessageIDs))
	for _, messageID := range event.MessageIDs {
		if a.suppressed.consume(messageID) {
			continue
		}
		messageIDs = append(messageIDs, messageID)
	}
	if len(messageIDs) <= 0 {
		return
	}

	log := a.log.WithFields(logrus.Fields{
		"guild":   event.GuildID,
		"channel": event.ChannelID,
	})

	unlock := a.locks.lock(event.GuildID)
	defer unlock()

	// mirror messages deleted by someone else
	dropped, err := a.mirrors.DeleteByMirror(event.GuildID, messageIDs)
	if err != nil {
		log.WithError(err).Error("unable to drop records of deleted mirror messages")
	} else if dropped > 0 {
		log.Infof("dropped %d records of externally deleted mirror messages", dropped)
	}

	for _, messageID := range messageIDs {
		records, err := a.mirrors.BySource(event.GuildID, event.ChannelID, messageID)
		if err != nil {
			log.WithField("message", messageID).WithError(err).Error("unable to load mirror records")
			continue
		}
		for i := range records {
			a.removeMirror(log.WithFields(logrus.Fields{"message": messageID, "emoji": records[i].Emoji}), &records[i])
		}
	}
}

func (a *Aggregator) handleChannelDeleted(event ChannelDeleted) {
	log := a.log.WithFields(logrus.Fields{
		"guild":   event.GuildID,
		"channel": event.ChannelID,
	})

	unlock := a.locks.lock(event.GuildID)
	defer unlock()

	boards, err := a.configs.DeleteBoardsByChannel(event.GuildID, event.ChannelID)
	if err != nil {
		log.WithError(err).Error("unable to delete boards of deleted channel")
	}
	records, err := a.mirrors.DeleteByChannel(event.GuildID, event.ChannelID)
	if err != nil {
		log.WithError(err).Error("unable to delete mirror records of deleted channel")
	}
	if boards > 0 || records > 0 {
		log.Infof("removed %d boards and %d mirror records of deleted channel", boards, records)
	}
}
