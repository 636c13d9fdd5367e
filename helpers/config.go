package helpers

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/Jeffail/gabs"
	"github.com/joho/godotenv"
)

const configEnvPrefix = "BOARDS_"

var (
	// config Saves the bot-config
	config      *gabs.Container
	configMutex sync.RWMutex
)

// LoadConfig loads the config from $path into $config
// An .env file next to the binary is loaded first, its values override the json file
func LoadConfig(path string) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		panic(err)
	}

	json, err := gabs.ParseJSONFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			panic(err)
		}
		json = gabs.New()
	}

	SetConfig(json)
}

// SetConfig replaces the loaded config
func SetConfig(c *gabs.Container) {
	configMutex.Lock()
	config = c
	configMutex.Unlock()
}

// GetConfig is a config getter
func GetConfig() *gabs.Container {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if config == nil {
		return gabs.New()
	}
	return config
}

// configEnvKey turns discord.token into BOARDS_DISCORD_TOKEN
func configEnvKey(path string) string {
	return configEnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(path))
}

// ConfigString returns the string at $path, the environment wins over the json file
func ConfigString(path string, defaultValue string) string {
	if value, ok := os.LookupEnv(configEnvKey(path)); ok {
		return value
	}
	if value, ok := GetConfig().Path(path).Data().(string); ok {
		return value
	}
	return defaultValue
}

// ConfigInt returns the number at $path, the environment wins over the json file
func ConfigInt(path string, defaultValue int) int {
	if value, ok := os.LookupEnv(configEnvKey(path)); ok {
		if number, err := strconv.Atoi(value); err == nil {
			return number
		}
		return defaultValue
	}
	switch value := GetConfig().Path(path).Data().(type) {
	case float64:
		return int(value)
	case string:
		if number, err := strconv.Atoi(value); err == nil {
			return number
		}
	}
	return defaultValue
}

// ConfigBool returns the flag at $path, the environment wins over the json file
func ConfigBool(path string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(configEnvKey(path)); ok {
		if flag, err := strconv.ParseBool(value); err == nil {
			return flag
		}
		return defaultValue
	}
	if value, ok := GetConfig().Path(path).Data().(bool); ok {
		return value
	}
	return defaultValue
}
