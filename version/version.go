package version

import "github.com/Seklfreak/starlight/cache"

// Version related vars
// Set by compiler
var (
	// BOT_VERSION example: 0.5.2-4-g205bbb8
	BOT_VERSION = "DEV_SNAPSHOT"

	// BUILD_TIME example: Fri Jan  6 00:45:46 CET 2017
	BUILD_TIME = "UNSET"

	// BUILD_USER example: sn0w
	BUILD_USER = "UNSET"
)

// DumpInfo logs all above vars
func DumpInfo() {
	cache.GetLogger().WithField("module", "version").WithFields(map[string]interface{}{
		"version":    BOT_VERSION,
		"build_time": BUILD_TIME,
		"build_user": BUILD_USER,
	}).Info("starting starlight")
}
