package boards

import (
	"testing"
	"time"

	"github.com/Seklfreak/starlight/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(messageID, mirrorID string, count int) models.MirrorRecord {
	return models.MirrorRecord{
		GuildID:         "g1",
		ChannelID:       "c1",
		MessageID:       messageID,
		Emoji:           testStarEmoji,
		Kind:            models.BoardKindStar,
		MirrorChannelID: "board",
		MirrorMessageID: mirrorID,
		Count:           count,
		CreatedAt:       time.Date(2024, 1, 1, 0, 0, count, 0, time.UTC),
	}
}

func TestMemoryStoreBoards(t *testing.T) {
	store := NewMemoryStore()

	board := models.NewBoardConfig("g1", models.BoardKindStar, "board", testStarEmoji, 3)
	require.NoError(t, store.SaveBoard(&board))

	found, err := store.Board("g1", testStarEmoji)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "board", found.ChannelID)

	found.IgnoreEntries = append(found.IgnoreEntries, "changed")
	again, err := store.BoardByKind("g1", models.BoardKindStar)
	require.NoError(t, err)
	assert.Empty(t, again.IgnoreEntries, "returned boards are copies")

	missing, err := store.Board("g1", testClownEmoji)
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := store.DeleteBoardsByChannel("g1", "board")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	boards, err := store.Boards("g1")
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestMemoryStoreMirrors(t *testing.T) {
	store := NewMemoryStore()

	for _, record := range []models.MirrorRecord{
		testRecord("m1", "x1", 5),
		testRecord("m2", "x2", 9),
		testRecord("m3", "x3", 1),
	} {
		record := record
		require.NoError(t, store.Upsert(&record))
	}

	top, err := store.MirrorsByKind("g1", models.BoardKindStar, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "m2", top[0].MessageID)
	assert.Equal(t, "m1", top[1].MessageID)

	bySource, err := store.BySource("g1", "c1", "m3")
	require.NoError(t, err)
	assert.Len(t, bySource, 1)

	dropped, err := store.DeleteByMirror("g1", []string{"x3", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	record := testRecord("m4", "x4", 2)
	record.ChannelID = "c2"
	require.NoError(t, store.Upsert(&record))
	dropped, err = store.DeleteByChannel("g1", "c2")
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	dropped, err = store.DeleteByChannel("g1", "board")
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)

	all, err := store.MirrorsByKind("g1", models.BoardKindStar, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}
