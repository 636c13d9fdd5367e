package modules

import (
	"strings"

	"github.com/Seklfreak/starlight/cache"
	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/metrics"
	"github.com/Seklfreak/starlight/modules/plugins/boards"
	"github.com/Seklfreak/starlight/ratelimits"
	"github.com/bwmarrin/discordgo"
)

// ParseCommand splits $content into the command and the rest if it starts with $prefix
func ParseCommand(prefix, content string) (command, rest string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}

	content = strings.TrimSpace(strings.TrimPrefix(content, prefix))
	if content == "" {
		return "", "", false
	}

	parts := strings.Fields(content)
	command = strings.ToLower(parts[0])
	rest = strings.TrimSpace(strings.TrimPrefix(content, parts[0]))
	return command, rest, true
}

// IsCommand returns a predicate matching messages that invoke a loaded plugin
func IsCommand(prefix string) boards.CommandPredicate {
	return func(msg *boards.SourceMessage) bool {
		if msg == nil || msg.Message == nil {
			return false
		}
		command, _, ok := ParseCommand(prefix, msg.Content)
		return ok && cache.HasPluginCommand(command)
	}
}

// command - The command that triggered this execution
// content - The content without command
// msg     - The message object
// session - The discord session
func CallBotPlugin(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	defer helpers.Recover()

	ref, ok := pluginCache[command]
	if !ok {
		return
	}

	// Consume a key for this action
	if err := ratelimits.Container.Drain(1, msg.Author.ID); err != nil {
		cache.GetLogger().WithField("module", "modules").WithFields(map[string]interface{}{
			"user":    msg.Author.ID,
			"command": command,
		}).Debug("user is ratelimited")
		return
	}

	metrics.CommandsExecuted.Inc()

	ref.Action(command, content, msg, session)
}
