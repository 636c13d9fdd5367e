package helpers

import (
	"os"
	"testing"

	"github.com/Jeffail/gabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLookups(t *testing.T) {
	json, err := gabs.ParseJSON([]byte(`{
		"prefix": "_",
		"boards": {"suppress_grace": 45, "enabled": true},
		"redis": {"address": ""}
	}`))
	require.NoError(t, err)
	SetConfig(json)
	defer SetConfig(nil)

	assert.Equal(t, "_", ConfigString("prefix", "%"))
	assert.Equal(t, "fallback", ConfigString("mongodb.url", "fallback"))
	assert.Equal(t, "", ConfigString("redis.address", "localhost:6379"))
	assert.Equal(t, 45, ConfigInt("boards.suppress_grace", 30))
	assert.Equal(t, 7, ConfigInt("boards.missing", 7))
	assert.True(t, ConfigBool("boards.enabled", false))
	assert.False(t, ConfigBool("boards.missing", false))
}

func TestConfigEnvironmentOverride(t *testing.T) {
	json, err := gabs.ParseJSON([]byte(`{"discord": {"token": "from-file"}, "boards": {"suppress_grace": 45}}`))
	require.NoError(t, err)
	SetConfig(json)
	defer SetConfig(nil)

	require.NoError(t, os.Setenv("BOARDS_DISCORD_TOKEN", "from-env"))
	require.NoError(t, os.Setenv("BOARDS_BOARDS_SUPPRESS_GRACE", "not-a-number"))
	defer os.Unsetenv("BOARDS_DISCORD_TOKEN")
	defer os.Unsetenv("BOARDS_BOARDS_SUPPRESS_GRACE")

	assert.Equal(t, "from-env", ConfigString("discord.token", ""))
	assert.Equal(t, 30, ConfigInt("boards.suppress_grace", 30))
	assert.Equal(t, "BOARDS_LOGGING_DISCORD_WEBHOOK", configEnvKey("logging.discord-webhook"))
}
