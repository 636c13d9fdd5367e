package helpers

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

const (
	// upload limits per premium tier, in bytes
	uploadLimitDefault = 10 * 1024 * 1024
	uploadLimitTier2   = 50 * 1024 * 1024
	uploadLimitTier3   = 100 * 1024 * 1024
)

var (
	snowflakeRegex = regexp.MustCompile(`^<(?:#|@!?|@&)?([0-9]{15,21})>$|^([0-9]{15,21})$`)
)

// GetRESTErrorCode returns the discord json error code of $err, 0 if it is no REST error
func GetRESTErrorCode(err error) (code int, status int) {
	if errD, ok := errors.Cause(err).(*discordgo.RESTError); ok && errD != nil {
		if errD.Message != nil {
			code = errD.Message.Code
		}
		if errD.Response != nil {
			status = errD.Response.StatusCode
		}
	}
	return code, status
}

// IsDiscordNotFound returns true if $err means the message, channel or guild does not exist (anymore)
func IsDiscordNotFound(err error) bool {
	code, status := GetRESTErrorCode(err)
	switch code {
	case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownGuild:
		return true
	}
	return status == http.StatusNotFound
}

// IsDiscordForbidden returns true if $err means the bot lacks permissions or access
func IsDiscordForbidden(err error) bool {
	code, status := GetRESTErrorCode(err)
	switch code {
	case discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
		return true
	}
	return status == http.StatusForbidden
}

// GetJumpURL returns the link to a message
func GetJumpURL(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// ParseSnowflake extracts the id from a plain id or a channel, user or role mention
func ParseSnowflake(text string) (id string, ok bool) {
	parts := snowflakeRegex.FindStringSubmatch(text)
	if parts == nil {
		return "", false
	}
	if parts[1] != "" {
		return parts[1], true
	}
	return parts[2], true
}

// GetUploadLimit returns the maximum file size the bot may upload in the guild
func GetUploadLimit(guild *discordgo.Guild) int64 {
	if guild == nil {
		return uploadLimitDefault
	}
	switch guild.PremiumTier {
	case discordgo.PremiumTier2:
		return uploadLimitTier2
	case discordgo.PremiumTier3:
		return uploadLimitTier3
	}
	return uploadLimitDefault
}

// GetDisplayName returns the nickname, global name or username of a user
func GetDisplayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil && member != nil {
		user = member.User
	}
	if user == nil {
		return "N/A"
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// IsTextChannel returns true for channels messages can be posted and reacted to in
func IsTextChannel(channel *discordgo.Channel) bool {
	if channel == nil {
		return false
	}
	switch channel.Type {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildVoice,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	}
	return false
}

// HasManageServer returns true if $userID may manage the guild $channelID belongs to
func HasManageServer(session *discordgo.Session, userID, channelID string) bool {
	permissions, err := session.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false
	}
	return permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator ||
		permissions&discordgo.PermissionManageServer == discordgo.PermissionManageServer
}
