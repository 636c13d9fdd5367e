package modules

import (
	"fmt"
	"strings"

	"github.com/Seklfreak/starlight/cache"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

var (
	pluginCache map[string]Plugin
	PluginList  []Plugin
)

// Init registers and initializes the plugins, fails if two plugins claim the same command
func Init(session *discordgo.Session, plugins ...Plugin) error {
	log := cache.GetLogger().WithField("module", "modules")

	cmds := make(map[string]Plugin)
	for _, plugin := range plugins {
		for _, cmd := range plugin.Commands() {
			cmd = strings.ToLower(cmd)
			if occupant, ok := cmds[cmd]; ok {
				return errors.Errorf("%T can not register %s, already registered by %T", plugin, cmd, occupant)
			}
			cmds[cmd] = plugin
		}
	}

	for _, plugin := range plugins {
		log.Info(fmt.Sprintf("[PLUG] %T reacts to [ %s ]", plugin, strings.Join(plugin.Commands(), " ")))
		plugin.Init(session)
	}

	pluginCommands := make([]string, 0, len(cmds))
	for k := range cmds {
		pluginCommands = append(pluginCommands, k)
	}

	pluginCache = cmds
	PluginList = plugins
	cache.SetPluginList(pluginCommands)

	log.Infof("initializer finished, loaded %d plugins", len(plugins))
	return nil
}
