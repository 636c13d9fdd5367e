package boards

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Seklfreak/starlight/cache"
	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/models"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const resetTimeout = 5 * time.Minute

type action func(args []string, in *discordgo.Message, out **discordgo.MessageSend) (next action)

// Handler is the command plugin of one board kind
type Handler struct {
	kind     models.BoardKind
	commands []string
	settings *Settings
	channels ChannelResolver

	send      func(channelID string, out *discordgo.MessageSend) error
	canManage func(in *discordgo.Message) bool
}

func NewHandler(kind models.BoardKind, settings *Settings, channels ChannelResolver) *Handler {
	commands := []string{"starboard", "sb"}
	if kind == models.BoardKindClown {
		commands = []string{"clownboard", "cb"}
	}
	return &Handler{
		kind:     kind,
		commands: commands,
		settings: settings,
		channels: channels,
	}
}

func (h *Handler) Commands() []string {
	return h.commands
}

func (h *Handler) Init(session *discordgo.Session) {
	if h.send == nil {
		h.send = func(channelID string, out *discordgo.MessageSend) error {
			_, err := session.ChannelMessageSendComplex(channelID, out)
			return err
		}
	}
	if h.canManage == nil {
		h.canManage = func(in *discordgo.Message) bool {
			return helpers.HasManageServer(session, in.Author.ID, in.ChannelID)
		}
	}
}

func (h *Handler) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	defer helpers.Recover()

	if msg.GuildID == "" {
		return
	}

	session.ChannelTyping(msg.ChannelID)

	var result *discordgo.MessageSend
	args := strings.Fields(content)

	action := h.actionStart
	for action != nil {
		action = action(args, msg, &result)
	}
}

func (h *Handler) actionStart(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	if len(args) < 1 {
		return h.actionSettings
	}

	switch strings.ToLower(args[0]) {
	case "settings", "status":
		return h.actionSettings
	case "ignored":
		return h.actionIgnored
	case "top":
		return h.actionTop
	}

	if !h.canManage(in) {
		*out = h.newMsg("You need the Manage Server permission to do that.")
		return h.actionFinish
	}

	switch strings.ToLower(args[0]) {
	case "set":
		return h.actionSet
	case "channel":
		return h.actionChannel
	case "emoji":
		return h.actionEmoji
	case "threshold", "minimum":
		return h.actionThreshold
	case "color", "colour":
		return h.actionColor
	case string(FlagSelfStar), string(FlagTimestamp), string(FlagAttachments), string(FlagJumpURL):
		return h.actionFlag
	case "lock":
		return h.actionLock
	case "unlock":
		return h.actionUnlock
	case "ignore":
		return h.actionIgnore
	case "reset":
		return h.actionReset
	}

	*out = h.newMsg("Invalid arguments.")
	return h.actionFinish
}

// _sb set <#channel> [emoji] [threshold]
func (h *Handler) actionSet(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	if len(args) < 2 {
		*out = h.newMsg("Too few arguments.")
		return h.actionFinish
	}

	channelID, ok := h.parseChannel(in, args[1])
	if !ok {
		*out = h.newMsg("I couldn't find that text channel.")
		return h.actionFinish
	}

	emoji := h.kind.DefaultEmoji()
	threshold := DefaultThreshold
	for _, arg := range args[2:] {
		if number, err := strconv.Atoi(arg); err == nil {
			threshold = number
			continue
		}
		emoji = arg
	}

	board, err := h.settings.Set(in.GuildID, h.kind, channelID, emoji, threshold)
	if err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	*out = h.newMsg(fmt.Sprintf("Set up the %s in <#%s> with %s, messages need %d reactions.",
		h.name(), board.ChannelID, board.Emoji, board.Threshold))
	return h.actionFinish
}

// _sb channel <#channel>
func (h *Handler) actionChannel(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	if len(args) < 2 {
		*out = h.newMsg("Too few arguments.")
		return h.actionFinish
	}

	channelID, ok := h.parseChannel(in, args[1])
	if !ok {
		*out = h.newMsg("I couldn't find that text channel.")
		return h.actionFinish
	}

	board, err := h.settings.SetChannel(in.GuildID, h.kind, channelID)
	if err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	*out = h.newMsg(fmt.Sprintf("The %s now posts to <#%s>.", h.name(), board.ChannelID))
	return h.actionFinish
}

// _sb emoji <emoji>
func (h *Handler) actionEmoji(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	if len(args) < 2 {
		*out = h.newMsg("Too few arguments.")
		return h.actionFinish
	}

	board, err := h.settings.SetEmoji(in.GuildID, h.kind, args[1])
	if err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	*out = h.newMsg(fmt.Sprintf("The %s now reacts to %s.", h.name(), board.Emoji))
	return h.actionFinish
}

// _sb threshold <number>
func (h *Handler) actionThreshold(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	if len(args) < 2 {
		*out = h.newMsg("Too few arguments.")
		return h.actionFinish
	}

	threshold, err := strconv.Atoi(args[1])
	if err != nil {
		*out = h.newMsg("Invalid arguments.")
		return h.actionFinish
	}

	board, err := h.settings.SetThreshold(in.GuildID, h.kind, threshold)
	if err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	*out = h.newMsg(fmt.Sprintf("Messages now need %d reactions to get on the %s.", board.Threshold, h.name()))
	return h.actionFinish
}

// _sb color [#hex]
func (h *Handler) actionColor(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	var color string
	if len(args) >= 2 {
		color = args[1]
	}

	board, err := h.settings.SetColor(in.GuildID, h.kind, color)
	if err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	if board.Color == "" {
		*out = h.newMsg("Mirrors use the color of the author again.")
	} else {
		*out = h.newMsg(fmt.Sprintf("Mirrors are colored %s now.", board.Color))
	}
	return h.actionFinish
}

// _sb <selfstar|timestamp|attachments|jumpurl> <on|off>
func (h *Handler) actionFlag(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	if len(args) < 2 {
		*out = h.newMsg("Too few arguments.")
		return h.actionFinish
	}

	value, ok := parseSwitch(args[1])
	if !ok {
		*out = h.newMsg("Invalid arguments, use on or off.")
		return h.actionFinish
	}

	flag := Flag(strings.ToLower(args[0]))
	_, err := h.settings.SetFlag(in.GuildID, h.kind, flag, value)
	if err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	*out = h.newMsg(fmt.Sprintf("Turned %s %s.", flag, switchText(value)))
	return h.actionFinish
}

func (h *Handler) actionLock(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	if _, err := h.settings.Lock(in.GuildID, h.kind); err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	*out = h.newMsg(fmt.Sprintf("Locked the %s, reactions don't change it anymore.", h.name()))
	return h.actionFinish
}

func (h *Handler) actionUnlock(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	if _, err := h.settings.Unlock(in.GuildID, h.kind); err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	*out = h.newMsg(fmt.Sprintf("Unlocked the %s.", h.name()))
	return h.actionFinish
}

// _sb ignore <user, role or channel>
func (h *Handler) actionIgnore(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	if len(args) < 2 {
		*out = h.newMsg("Too few arguments.")
		return h.actionFinish
	}

	entry, ok := helpers.ParseSnowflake(args[1])
	if !ok {
		*out = h.newMsg("Invalid arguments, mention a user, role or channel or use an ID.")
		return h.actionFinish
	}

	added, err := h.settings.ToggleIgnore(in.GuildID, h.kind, entry)
	if err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	if added {
		*out = h.newMsg(fmt.Sprintf("Reactions from or in `%s` are ignored now.", entry))
	} else {
		*out = h.newMsg(fmt.Sprintf("Reactions from or in `%s` count again.", entry))
	}
	return h.actionFinish
}

func (h *Handler) actionIgnored(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	entries, err := h.settings.Ignored(in.GuildID, h.kind)
	if err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	if len(entries) <= 0 {
		*out = h.newMsg("Nothing is ignored.")
		return h.actionFinish
	}

	var text string
	for _, entry := range entries {
		text += "`" + entry + "`\n"
	}
	*out = &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{{
		Title:       fmt.Sprintf("Ignored on the %s", h.name()),
		Description: strings.TrimSpace(text),
	}}}
	return h.actionFinish
}

func (h *Handler) actionSettings(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	board, err := h.settings.Get(in.GuildID, h.kind)
	if err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	channel := "not set"
	if board.ChannelID != "" {
		channel = "<#" + board.ChannelID + ">"
	}
	color := "author color"
	if board.Color != "" {
		color = board.Color
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s settings", strings.ToUpper(h.name()[:1])+h.name()[1:]),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: channel, Inline: true},
			{Name: "Emoji", Value: board.Emoji, Inline: true},
			{Name: "Threshold", Value: strconv.Itoa(board.Threshold), Inline: true},
			{Name: "Color", Value: color, Inline: true},
			{Name: "Locked", Value: switchText(board.Locked), Inline: true},
			{Name: "Self star", Value: switchText(board.SelfStar), Inline: true},
			{Name: "Timestamp", Value: switchText(board.ShowTimestamp), Inline: true},
			{Name: "Attachments", Value: switchText(board.ShowAttachments), Inline: true},
			{Name: "Jump URL", Value: switchText(board.ShowJumpURL), Inline: true},
			{Name: "Ignored", Value: humanize.Comma(int64(len(board.IgnoreEntries))), Inline: true},
		},
	}
	if board.Color != "" {
		embed.Color = helpers.GetDiscordColorFromHex(board.Color)
	}
	*out = &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	return h.actionFinish
}

func (h *Handler) actionTop(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	records, err := h.settings.Top(in.GuildID, h.kind, TopLimit)
	if err != nil {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	if len(records) <= 0 {
		*out = h.newMsg(fmt.Sprintf("Nothing made it on the %s yet.", h.name()))
		return h.actionFinish
	}

	var topText string
	for i, record := range records {
		topText += fmt.Sprintf("#%d by <@%s> (%s %s): [Jump to message](%s)\n",
			i+1, record.AuthorID, humanize.Comma(int64(record.Count)), record.Emoji,
			helpers.GetJumpURL(record.GuildID, record.ChannelID, record.MessageID))
	}
	*out = &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{{
		Title:       fmt.Sprintf("Top messages on the %s", h.name()),
		Description: strings.TrimSpace(topText),
	}}}
	return h.actionFinish
}

func (h *Handler) actionReset(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
	defer cancel()

	result, err := h.settings.Reset(ctx, in.GuildID, h.kind)
	if err != nil && result.Records == 0 {
		*out = h.errorMsg(err)
		return h.actionFinish
	}

	text := fmt.Sprintf("Reset the %s, deleted %s of %s mirror messages.",
		h.name(), humanize.Comma(int64(result.Deleted)), humanize.Comma(int64(result.Records)))
	if result.Failed > 0 {
		text += fmt.Sprintf(" %s could not be deleted.", humanize.Comma(int64(result.Failed)))
	}
	*out = h.newMsg(text)
	return h.actionFinish
}

func (h *Handler) actionFinish(args []string, in *discordgo.Message, out **discordgo.MessageSend) action {
	if *out == nil {
		return nil
	}
	(*out).AllowedMentions = &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}

	err := h.send(in.ChannelID, *out)
	if err != nil {
		h.logger().WithFields(logrus.Fields{"guild": in.GuildID, "channel": in.ChannelID}).
			WithError(err).Warn("unable to send command response")
	}
	return nil
}

// parseChannel resolves a channel mention or ID to a text channel of the guild the command was used in
func (h *Handler) parseChannel(in *discordgo.Message, text string) (string, bool) {
	channelID, ok := helpers.ParseSnowflake(text)
	if !ok {
		return "", false
	}
	channel, err := h.channels.Channel(channelID)
	if err != nil || channel.GuildID != in.GuildID || !helpers.IsTextChannel(channel) {
		return "", false
	}
	return channel.ID, true
}

func (h *Handler) errorMsg(err error) *discordgo.MessageSend {
	switch errors.Cause(err) {
	case ErrNoBoard:
		return h.newMsg(fmt.Sprintf("There is no %s yet, set one up with `%s set <#channel>`.", h.name(), h.commands[0]))
	case ErrBoardExists:
		return h.newMsg(fmt.Sprintf("There already is a %s, reset it first.", h.name()))
	case ErrEmojiInUse:
		return h.newMsg("Another board already uses that emoji.")
	case ErrInvalidEmoji:
		return h.newMsg("That is not an emoji I can use.")
	case ErrInvalidThreshold:
		return h.newMsg("The threshold has to be at least 1.")
	case ErrAlreadyLocked:
		return h.newMsg(fmt.Sprintf("The %s is already locked.", h.name()))
	case ErrNotLocked:
		return h.newMsg(fmt.Sprintf("The %s is not locked.", h.name()))
	case helpers.ErrInvalidColor:
		return h.newMsg("Invalid color, use a hex code like `#ffd700`.")
	}

	h.logger().WithError(err).Error("board command failed")
	return h.newMsg("Something went wrong, please try again later.")
}

func (h *Handler) name() string {
	return string(h.kind) + "board"
}

func (h *Handler) newMsg(content string) *discordgo.MessageSend {
	return &discordgo.MessageSend{Content: content}
}

func (h *Handler) logger() *logrus.Entry {
	return cache.GetLogger().WithField("module", h.name())
}

func parseSwitch(text string) (value bool, ok bool) {
	switch strings.ToLower(text) {
	case "on", "enable", "enabled", "yes", "true":
		return true, true
	case "off", "disable", "disabled", "no", "false":
		return false, true
	}
	return false, false
}

func switchText(value bool) string {
	if value {
		return "on"
	}
	return "off"
}
