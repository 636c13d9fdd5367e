package boards

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/models"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"mvdan.cc/xurls"
)

const (
	starEmoji = "⭐"

	embedDescriptionLimit = 2048
)

var (
	imageFileExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}
	mediaFileExtensions = []string{"mp4", "mov", "webm", "mkv", "mp3", "ogg", "wav", "flac", "m4a"}
)

// Render builds the mirror message for msg at count.
// It only depends on its arguments, so the same input always renders the same content.
func Render(board models.BoardConfig, msg *SourceMessage, count int) MirrorContent {
	content := MirrorContent{
		Content: fmt.Sprintf("%s **#%s**", displayEmoji(board.Emoji, count), humanize.Comma(int64(count))),
	}

	embed := baseEmbed(board, msg)

	embed.Author = &discordgo.MessageEmbedAuthor{
		Name:    msg.AuthorName,
		IconURL: msg.AuthorAvatarURL,
	}
	if board.ShowJumpURL {
		embed.URL = msg.JumpURL()
	}

	description := shorten(strings.TrimSpace(msg.Content), embedDescriptionLimit)
	if foreign := foreignEmbed(msg); foreign != nil && foreign.Description != "" {
		description += "\n" + shorten(foreign.Description, embedDescriptionLimit)
	}

	for _, attachment := range msg.Attachments {
		if isImageAttachment(attachment) {
			embed.Image = &discordgo.MessageEmbedImage{URL: attachment.URL}
			break
		}
	}

	if board.ShowAttachments {
		if embed.Image == nil {
			for _, sourceEmbed := range msg.Embeds {
				imageURL := mediaEmbedURL(sourceEmbed)
				if imageURL == "" {
					continue
				}
				embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
				if sourceEmbed.URL != "" {
					description = strings.Replace(description, sourceEmbed.URL, "", 1)
				}
				break
			}
		}

		if embed.Image == nil {
		TryContentUrls:
			for _, foundURL := range xurls.Strict.FindAllString(msg.Content, -1) {
				for _, fileExtension := range imageFileExtensions {
					if strings.HasSuffix(strings.ToLower(foundURL), "."+fileExtension) {
						embed.Image = &discordgo.MessageEmbedImage{URL: foundURL}
						break TryContentUrls
					}
				}
			}
		}

		for _, attachment := range msg.Attachments {
			if !isMediaAttachment(attachment) {
				continue
			}
			if msg.UploadLimit > 0 && int64(attachment.Size) > msg.UploadLimit {
				continue
			}
			content.Files = append(content.Files, MirrorFile{
				Name:        attachment.Filename,
				URL:         attachment.URL,
				ContentType: attachment.ContentType,
				Size:        attachment.Size,
			})
		}
	}

	embed.Description = strings.TrimSpace(description)

	if msg.ReplyAuthorName != "" {
		value := "Original message"
		if msg.ReplyJumpURL != "" {
			value = fmt.Sprintf("[Original message](%s)", msg.ReplyJumpURL)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Replying to " + msg.ReplyAuthorName,
			Value: value,
		})
	}

	if board.ShowJumpURL {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "#" + msg.ChannelName,
			Value: fmt.Sprintf("[Jump to message](%s)", msg.JumpURL()),
		})
	}

	if board.ShowTimestamp && !msg.Timestamp.IsZero() {
		embed.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
	}

	content.Embed = embed
	return content
}

// displayEmoji picks the star tier for the default star emoji, other emoji are shown as they are
func displayEmoji(emoji string, count int) string {
	if emoji != starEmoji {
		return emoji
	}
	switch {
	case count < 5:
		return "⭐"
	case count < 10:
		return "🌟"
	case count < 25:
		return "💫"
	}
	return "✨"
}

func baseEmbed(board models.BoardConfig, msg *SourceMessage) *discordgo.MessageEmbed {
	color := msg.AuthorColor
	if board.Color != "" {
		color = helpers.GetDiscordColorFromHex(board.Color)
	}

	foreign := foreignEmbed(msg)
	if foreign == nil {
		return &discordgo.MessageEmbed{
			Type:  discordgo.EmbedTypeRich,
			Color: color,
		}
	}

	embed := &discordgo.MessageEmbed{
		Type:      discordgo.EmbedTypeRich,
		Title:     foreign.Title,
		Color:     foreign.Color,
		Footer:    foreign.Footer,
		Thumbnail: foreign.Thumbnail,
		Image:     foreign.Image,
		Fields:    append([]*discordgo.MessageEmbedField(nil), foreign.Fields...),
	}
	if embed.Color == 0 {
		embed.Color = color
	}
	return embed
}

// foreignEmbed returns the first embed of msg if it can serve as base for the mirror
func foreignEmbed(msg *SourceMessage) *discordgo.MessageEmbed {
	if len(msg.Embeds) <= 0 || msg.Embeds[0] == nil {
		return nil
	}
	switch msg.Embeds[0].Type {
	case discordgo.EmbedTypeImage, discordgo.EmbedTypeGifv, "gif":
		return nil
	}
	return msg.Embeds[0]
}

func mediaEmbedURL(embed *discordgo.MessageEmbed) string {
	if embed == nil {
		return ""
	}
	if embed.Type != discordgo.EmbedTypeImage && embed.Type != discordgo.EmbedTypeGifv {
		return ""
	}
	if embed.Thumbnail != nil && embed.Thumbnail.URL != "" {
		return embed.Thumbnail.URL
	}
	return embed.URL
}

func attachmentExtension(attachment *discordgo.MessageAttachment) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(attachment.Filename)), ".")
}

func isImageAttachment(attachment *discordgo.MessageAttachment) bool {
	if attachment == nil {
		return false
	}
	if strings.HasPrefix(attachment.ContentType, "image/") {
		return true
	}
	extension := attachmentExtension(attachment)
	for _, imageExtension := range imageFileExtensions {
		if extension == imageExtension {
			return true
		}
	}
	return false
}

func isMediaAttachment(attachment *discordgo.MessageAttachment) bool {
	if attachment == nil {
		return false
	}
	if strings.HasPrefix(attachment.ContentType, "video/") || strings.HasPrefix(attachment.ContentType, "audio/") {
		return true
	}
	extension := attachmentExtension(attachment)
	for _, mediaExtension := range mediaFileExtensions {
		if extension == mediaExtension {
			return true
		}
	}
	return false
}

// shorten cuts text to at most limit runes, ending with "..." when cut
func shorten(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
