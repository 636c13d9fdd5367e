package main

import (
	"context"
	"fmt"

	"github.com/Seklfreak/starlight/cache"
	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/metrics"
	"github.com/Seklfreak/starlight/modules"
	"github.com/Seklfreak/starlight/modules/plugins/boards"
	"github.com/bwmarrin/discordgo"
)

// Bot dispatches the gateway events to the command plugins and the boards
type Bot struct {
	ctx        context.Context
	prefix     string
	router     *boards.Router
	aggregator *boards.Aggregator
	plugins    []modules.Plugin
}

func (b *Bot) AddHandlers(session *discordgo.Session) {
	session.AddHandlerOnce(b.OnReady)
	session.AddHandler(b.OnMessageCreate)
	session.AddHandler(b.OnReactionAdd)
	session.AddHandler(b.OnReactionRemove)
	session.AddHandler(b.OnReactionRemoveAll)
	session.AddHandler(b.OnMessageDelete)
	session.AddHandler(b.OnMessageDeleteBulk)
	session.AddHandler(b.OnChannelDelete)
}

// OnReady gets called after the gateway connected
func (b *Bot) OnReady(session *discordgo.Session, event *discordgo.Ready) {
	log := cache.GetLogger().WithField("module", "bot")
	log.Infof("connected to discord as %s#%s", event.User.Username, event.User.Discriminator)
	log.Info(fmt.Sprintf(
		"invite link: https://discord.com/oauth2/authorize?client_id=%s&scope=bot&permissions=%d",
		event.User.ID,
		discordgo.PermissionSendMessages|discordgo.PermissionEmbedLinks|discordgo.PermissionAttachFiles|
			discordgo.PermissionReadMessageHistory|discordgo.PermissionViewChannel,
	))

	if err := modules.Init(session, b.plugins...); err != nil {
		log.WithError(err).Fatal("initializing plugins failed")
	}
}

// OnMessageCreate gets called after a new message was sent
// This will be called after *every* message on *every* server so it should die as soon as possible
// or spawn costly work inside of goroutines.
func (b *Bot) OnMessageCreate(session *discordgo.Session, message *discordgo.MessageCreate) {
	if message.Author == nil || message.Author.Bot || message.GuildID == "" {
		return
	}

	command, content, ok := modules.ParseCommand(b.prefix, message.Content)
	if !ok || !cache.HasPluginCommand(command) {
		return
	}

	cache.GetLogger().WithField("module", "bot").WithFields(map[string]interface{}{
		"guild":   message.GuildID,
		"channel": message.ChannelID,
		"user":    message.Author.ID,
	}).Debug(fmt.Sprintf("%s: %s", message.Author.Username, message.Content))

	go modules.CallBotPlugin(command, content, message.Message, session)
}

// Every board event runs in its own goroutine, the aggregator serializes them per guild
func (b *Bot) handleBoardEvent(raw interface{}) {
	metrics.EventsReceived.Inc()
	go func() {
		defer helpers.Recover()

		event := b.router.Route(raw)
		if event == nil {
			return
		}
		b.aggregator.Handle(b.ctx, event)
	}()
}

func (b *Bot) OnReactionAdd(session *discordgo.Session, reaction *discordgo.MessageReactionAdd) {
	b.handleBoardEvent(reaction)
}

func (b *Bot) OnReactionRemove(session *discordgo.Session, reaction *discordgo.MessageReactionRemove) {
	b.handleBoardEvent(reaction)
}

func (b *Bot) OnReactionRemoveAll(session *discordgo.Session, reaction *discordgo.MessageReactionRemoveAll) {
	b.handleBoardEvent(reaction)
}

func (b *Bot) OnMessageDelete(session *discordgo.Session, message *discordgo.MessageDelete) {
	b.handleBoardEvent(message)
}

func (b *Bot) OnMessageDeleteBulk(session *discordgo.Session, messages *discordgo.MessageDeleteBulk) {
	b.handleBoardEvent(messages)
}

func (b *Bot) OnChannelDelete(session *discordgo.Session, channel *discordgo.ChannelDelete) {
	b.handleBoardEvent(channel)
}
