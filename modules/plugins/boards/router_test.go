package boards

import (
	"testing"

	"github.com/Seklfreak/starlight/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*Router, *fakePlatform) {
	platform := newFakePlatform()
	platform.addChannel(testGuildID, testSourceChannel, false)
	platform.addChannel(testGuildID, testBoardChannel, false)
	platform.mutex.Lock()
	platform.channels["category"] = &discordgo.Channel{ID: "category", GuildID: testGuildID, Type: discordgo.ChannelTypeGuildCategory}
	platform.mutex.Unlock()

	store := NewMemoryStore()
	star := models.NewBoardConfig(testGuildID, models.BoardKindStar, testBoardChannel, testStarEmoji, 3)
	require.NoError(t, store.SaveBoard(&star))
	clown := models.NewBoardConfig(testGuildID, models.BoardKindClown, testBoardChannel, "<:clown:123>", 3)
	require.NoError(t, store.SaveBoard(&clown))

	return NewRouter(platform, store, testLogger()), platform
}

func reactionAdd(guildID, channelID, userID string, emoji discordgo.Emoji) *discordgo.MessageReactionAdd {
	return &discordgo.MessageReactionAdd{
		MessageReaction: &discordgo.MessageReaction{
			GuildID:   guildID,
			ChannelID: channelID,
			MessageID: testMessageID,
			UserID:    userID,
			Emoji:     emoji,
		},
	}
}

func TestRouteReactions(t *testing.T) {
	router, _ := newTestRouter(t)

	event := router.Route(reactionAdd(testGuildID, testSourceChannel, "u1", discordgo.Emoji{Name: "⭐\uFE0F"}))
	require.IsType(t, ReactionAdded{}, event)
	added := event.(ReactionAdded)
	assert.Equal(t, testGuildID, added.Guild())
	assert.Equal(t, testStarEmoji, added.Emoji)
	assert.Equal(t, "u1", added.UserID)

	event = router.Route(&discordgo.MessageReactionRemove{MessageReaction: &discordgo.MessageReaction{
		GuildID:   testGuildID,
		ChannelID: testSourceChannel,
		MessageID: testMessageID,
		UserID:    "u1",
		Emoji:     discordgo.Emoji{ID: "123", Name: "clown"},
	}})
	require.IsType(t, ReactionRemoved{}, event)
	assert.Equal(t, "<:clown:123>", event.(ReactionRemoved).Emoji)
}

func TestRouteRenamedCustomEmoji(t *testing.T) {
	router, _ := newTestRouter(t)

	event := router.Route(reactionAdd(testGuildID, testSourceChannel, "u1", discordgo.Emoji{ID: "123", Name: "honk"}))
	require.IsType(t, ReactionAdded{}, event)
	assert.Equal(t, "<:honk:123>", event.(ReactionAdded).Emoji)

	board, err := router.configs.Board(testGuildID, event.(ReactionAdded).Emoji)
	require.NoError(t, err)
	require.NotNil(t, board)
	assert.Equal(t, models.BoardKindClown, board.Kind)

	assert.Nil(t, router.Route(reactionAdd(testGuildID, testSourceChannel, "u1", discordgo.Emoji{ID: "456", Name: "clown"})))
}

func TestRouteDropsReactions(t *testing.T) {
	router, _ := newTestRouter(t)

	for name, raw := range map[string]interface{}{
		"no guild":       reactionAdd("", testSourceChannel, "u1", discordgo.Emoji{Name: testStarEmoji}),
		"unknown emoji":  reactionAdd(testGuildID, testSourceChannel, "u1", discordgo.Emoji{Name: "👍"}),
		"own reaction":   reactionAdd(testGuildID, testSourceChannel, testBotID, discordgo.Emoji{Name: testStarEmoji}),
		"unknown chan":   reactionAdd(testGuildID, "nowhere", "u1", discordgo.Emoji{Name: testStarEmoji}),
		"no text chan":   reactionAdd(testGuildID, "category", "u1", discordgo.Emoji{Name: testStarEmoji}),
		"other guild":    reactionAdd("other", testSourceChannel, "u1", discordgo.Emoji{Name: testStarEmoji}),
		"nil reaction":   &discordgo.MessageReactionAdd{},
		"unhandled type": &discordgo.MessageCreate{},
	} {
		assert.Nil(t, router.Route(raw), name)
	}
}

func TestRouteClearAndDeletes(t *testing.T) {
	router, _ := newTestRouter(t)

	event := router.Route(&discordgo.MessageReactionRemoveAll{MessageReaction: &discordgo.MessageReaction{
		GuildID:   testGuildID,
		ChannelID: testSourceChannel,
		MessageID: testMessageID,
	}})
	assert.Equal(t, ReactionsCleared{GuildID: testGuildID, ChannelID: testSourceChannel, MessageID: testMessageID}, event)

	event = router.Route(&discordgo.MessageDelete{Message: &discordgo.Message{
		ID:        testMessageID,
		GuildID:   testGuildID,
		ChannelID: "deleted channels are fine",
	}})
	assert.Equal(t, MessageDeleted{GuildID: testGuildID, ChannelID: "deleted channels are fine", MessageIDs: []string{testMessageID}}, event)

	event = router.Route(&discordgo.MessageDeleteBulk{GuildID: testGuildID, ChannelID: testSourceChannel, Messages: []string{"a", "b"}})
	assert.Equal(t, MessageDeleted{GuildID: testGuildID, ChannelID: testSourceChannel, MessageIDs: []string{"a", "b"}}, event)

	event = router.Route(&discordgo.ChannelDelete{Channel: &discordgo.Channel{ID: testBoardChannel, GuildID: testGuildID}})
	assert.Equal(t, ChannelDeleted{GuildID: testGuildID, ChannelID: testBoardChannel}, event)

	assert.Nil(t, router.Route(&discordgo.MessageDelete{Message: &discordgo.Message{ID: testMessageID}}))
	assert.Nil(t, router.Route(&discordgo.MessageDeleteBulk{GuildID: testGuildID}))
	assert.Nil(t, router.Route(&discordgo.ChannelDelete{Channel: &discordgo.Channel{ID: "dm"}}))
	assert.Nil(t, router.Route(&discordgo.ChannelDelete{}))
}
