package boards

import (
	"strings"
	"testing"
	"time"

	"github.com/Seklfreak/starlight/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSourceMessage(content string) *SourceMessage {
	return &SourceMessage{
		Message: &discordgo.Message{
			ID:        "m1",
			GuildID:   "g1",
			ChannelID: "c1",
			Content:   content,
			Author:    &discordgo.User{ID: "a1", Username: "alice"},
			Timestamp: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		},
		AuthorName:      "Alice",
		AuthorAvatarURL: "https://cdn.example/avatar.png",
		AuthorColor:     0x00ff00,
		ChannelName:     "general",
		UploadLimit:     1000,
	}
}

func testBoard(emoji string) models.BoardConfig {
	return models.NewBoardConfig("g1", models.BoardKindStar, "board", emoji, 3)
}

func TestRenderIsDeterministic(t *testing.T) {
	board := testBoard(testStarEmoji)
	msg := testSourceMessage("look at this https://example.com/cat.png")
	msg.Attachments = []*discordgo.MessageAttachment{
		{Filename: "clip.mp4", URL: "https://cdn.example/clip.mp4", Size: 500, ContentType: "video/mp4"},
	}

	first := Render(board, msg, 7)
	second := Render(board, msg, 7)
	assert.Equal(t, first, second)
}

func TestRenderStarTiers(t *testing.T) {
	board := testBoard(testStarEmoji)
	msg := testSourceMessage("hi")

	for count, expected := range map[int]string{
		1:    "⭐ **#1**",
		4:    "⭐ **#4**",
		5:    "🌟 **#5**",
		9:    "🌟 **#9**",
		10:   "💫 **#10**",
		24:   "💫 **#24**",
		25:   "✨ **#25**",
		1234: "✨ **#1,234**",
	} {
		assert.Equal(t, expected, Render(board, msg, count).Content, "count %d", count)
	}

	clown := testBoard(testClownEmoji)
	assert.Equal(t, "🤡 **#30**", Render(clown, msg, 30).Content)
}

func TestRenderEmbed(t *testing.T) {
	board := testBoard(testStarEmoji)
	msg := testSourceMessage("  hello there  ")

	embed := Render(board, msg, 3).Embed
	require.NotNil(t, embed)
	assert.Equal(t, "hello there", embed.Description)
	assert.Equal(t, "Alice", embed.Author.Name)
	assert.Equal(t, "https://cdn.example/avatar.png", embed.Author.IconURL)
	assert.Equal(t, msg.JumpURL(), embed.URL)
	assert.Equal(t, 0x00ff00, embed.Color)
	assert.Equal(t, "2024-05-06T07:08:09Z", embed.Timestamp)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "#general", embed.Fields[0].Name)
	assert.Equal(t, "[Jump to message](https://discord.com/channels/g1/c1/m1)", embed.Fields[0].Value)

	board.ShowJumpURL = false
	board.ShowTimestamp = false
	board.Color = "#ffd700"
	embed = Render(board, msg, 3).Embed
	assert.Empty(t, embed.URL)
	assert.Empty(t, embed.Fields)
	assert.Empty(t, embed.Timestamp)
	assert.Equal(t, 0xffd700, embed.Color)
}

func TestRenderReply(t *testing.T) {
	board := testBoard(testStarEmoji)
	board.ShowJumpURL = false
	msg := testSourceMessage("yes")
	msg.ReplyAuthorName = "Bob"
	msg.ReplyJumpURL = "https://discord.com/channels/g1/c1/m0"

	embed := Render(board, msg, 3).Embed
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Replying to Bob", embed.Fields[0].Name)
	assert.Equal(t, "[Original message](https://discord.com/channels/g1/c1/m0)", embed.Fields[0].Value)
}

func TestRenderImages(t *testing.T) {
	board := testBoard(testStarEmoji)

	msg := testSourceMessage("")
	msg.Attachments = []*discordgo.MessageAttachment{
		{Filename: "notes.txt", URL: "https://cdn.example/notes.txt"},
		{Filename: "cat.PNG", URL: "https://cdn.example/cat.PNG"},
	}
	embed := Render(board, msg, 3).Embed
	require.NotNil(t, embed.Image)
	assert.Equal(t, "https://cdn.example/cat.PNG", embed.Image.URL)

	msg = testSourceMessage("see https://example.com/page and https://example.com/dog.jpg")
	embed = Render(board, msg, 3).Embed
	require.NotNil(t, embed.Image)
	assert.Equal(t, "https://example.com/dog.jpg", embed.Image.URL)

	board.ShowAttachments = false
	embed = Render(board, msg, 3).Embed
	assert.Nil(t, embed.Image)
}

func TestRenderGifvEmbed(t *testing.T) {
	board := testBoard(testStarEmoji)
	msg := testSourceMessage("https://tenor.com/view/funny-gif")
	msg.Embeds = []*discordgo.MessageEmbed{{
		Type:      discordgo.EmbedTypeGifv,
		URL:       "https://tenor.com/view/funny-gif",
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: "https://media.tenor.com/funny.png"},
	}}

	embed := Render(board, msg, 3).Embed
	require.NotNil(t, embed.Image)
	assert.Equal(t, "https://media.tenor.com/funny.png", embed.Image.URL)
	assert.Empty(t, embed.Description)
	assert.Equal(t, 0x00ff00, embed.Color)
}

func TestRenderCopiesRichEmbed(t *testing.T) {
	board := testBoard(testStarEmoji)
	board.ShowJumpURL = false
	msg := testSourceMessage("check this")
	foreign := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       "Release notes",
		Description: "lots of changes",
		Color:       0x123456,
		Fields:      []*discordgo.MessageEmbedField{{Name: "Version", Value: "1.0"}},
	}
	msg.Embeds = []*discordgo.MessageEmbed{foreign}
	msg.ReplyAuthorName = "Bob"

	embed := Render(board, msg, 3).Embed
	assert.Equal(t, "Release notes", embed.Title)
	assert.Equal(t, "check this\nlots of changes", embed.Description)
	assert.Equal(t, 0x123456, embed.Color)
	assert.Len(t, embed.Fields, 2)
	assert.Len(t, foreign.Fields, 1, "source embed must not be modified")
}

func TestRenderMediaFiles(t *testing.T) {
	board := testBoard(testStarEmoji)
	msg := testSourceMessage("clips")
	msg.Attachments = []*discordgo.MessageAttachment{
		{Filename: "small.mp4", URL: "https://cdn.example/small.mp4", Size: 999},
		{Filename: "huge.webm", URL: "https://cdn.example/huge.webm", Size: 1001},
		{Filename: "voice.ogg", URL: "https://cdn.example/voice.ogg", Size: 10, ContentType: "audio/ogg"},
	}

	files := Render(board, msg, 3).Files
	require.Len(t, files, 2)
	assert.Equal(t, "small.mp4", files[0].Name)
	assert.Equal(t, "voice.ogg", files[1].Name)
	assert.Equal(t, "audio/ogg", files[1].ContentType)

	board.ShowAttachments = false
	assert.Empty(t, Render(board, msg, 3).Files)
}

func TestRenderShortensLongContent(t *testing.T) {
	board := testBoard(testStarEmoji)
	msg := testSourceMessage(strings.Repeat("ä", 3000))

	description := Render(board, msg, 3).Embed.Description
	assert.Equal(t, embedDescriptionLimit, len([]rune(description)))
	assert.True(t, strings.HasSuffix(description, "..."))
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "short", shorten("short", 10))
	assert.Equal(t, "abcdefg...", shorten("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", shorten("abcdef", 2))
}
