package cache

import (
	"strings"
	"sync"
)

var (
	pluginCommandList []string
	pluginCommandSet  map[string]bool
	modulelistsMutex  sync.RWMutex
)

func SetPluginList(l []string) {
	modulelistsMutex.Lock()
	pluginCommandList = l
	pluginCommandSet = make(map[string]bool, len(l))
	for _, command := range l {
		pluginCommandSet[strings.ToLower(command)] = true
	}
	modulelistsMutex.Unlock()
}

func GetPluginList() []string {
	modulelistsMutex.RLock()
	defer modulelistsMutex.RUnlock()

	return pluginCommandList
}

// HasPluginCommand returns true if a loaded plugin reacts to $command
func HasPluginCommand(command string) bool {
	modulelistsMutex.RLock()
	defer modulelistsMutex.RUnlock()

	return pluginCommandSet[strings.ToLower(command)]
}
