package modules

import "github.com/bwmarrin/discordgo"

// Plugin is a command module the bot dispatches text commands to
type Plugin interface {
	Commands() []string

	Init(session *discordgo.Session)

	Action(
		command string,
		content string,
		msg *discordgo.Message,
		session *discordgo.Session,
	)
}
