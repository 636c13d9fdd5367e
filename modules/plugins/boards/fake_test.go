package boards

import (
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Seklfreak/starlight/cache"
	"github.com/Seklfreak/starlight/models"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	testGuildID        = "guild"
	testSourceChannel  = "source"
	testBoardChannel   = "board"
	testMessageID      = "message"
	testAuthorID       = "author"
	testBotID          = "bot"
	testStarEmoji      = "⭐"
	testClownEmoji     = "🤡"
	testDefaultContent = "hello world"
)

func TestMain(m *testing.M) {
	cache.SetLogger(testLogger().Logger)
	os.Exit(m.Run())
}

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.Out = io.Discard
	return logrus.NewEntry(log)
}

type sentMessage struct {
	ChannelID string
	MessageID string
	Content   MirrorContent
}

type fakePlatform struct {
	mutex sync.Mutex

	botID     string
	messages  map[string]*SourceMessage
	reactions map[string][]string
	channels  map[string]*discordgo.Channel
	members   map[string]*discordgo.Member
	gone      map[string]bool

	live    map[string]bool
	sent    []sentMessage
	edits   []sentMessage
	deleted []string
	nextID  int

	sendErr   error
	deleteErr error
	fetchHook func()
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		botID:     testBotID,
		messages:  make(map[string]*SourceMessage),
		reactions: make(map[string][]string),
		channels:  make(map[string]*discordgo.Channel),
		members:   make(map[string]*discordgo.Member),
		gone:      make(map[string]bool),
		live:      make(map[string]bool),
	}
}

func reactionKey(messageID, emoji string) string {
	return messageID + "|" + emoji
}

func (f *fakePlatform) addChannel(guildID, channelID string, nsfw bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.channels[channelID] = &discordgo.Channel{
		ID:      channelID,
		GuildID: guildID,
		Name:    channelID,
		Type:    discordgo.ChannelTypeGuildText,
		NSFW:    nsfw,
	}
}

func (f *fakePlatform) addMessage(guildID, channelID, messageID, authorID, content string) *SourceMessage {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	msg := &SourceMessage{
		Message: &discordgo.Message{
			ID:        messageID,
			GuildID:   guildID,
			ChannelID: channelID,
			Content:   content,
			Author:    &discordgo.User{ID: authorID, Username: authorID},
			Type:      discordgo.MessageTypeDefault,
			Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		AuthorName:  authorID,
		ChannelName: channelID,
		UploadLimit: 10 * 1024 * 1024,
	}
	f.messages[messageID] = msg
	return msg
}

func (f *fakePlatform) setReactions(messageID, emoji string, userIDs ...string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.reactions[reactionKey(messageID, emoji)] = userIDs
}

func (f *fakePlatform) addMember(userID string, roles ...string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.members[userID] = &discordgo.Member{
		User:  &discordgo.User{ID: userID},
		Roles: roles,
	}
}

// leaveGuild makes member lookups of userID fail
func (f *fakePlatform) leaveGuild(userID string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.gone[userID] = true
}

func (f *fakePlatform) killMessage(messageID string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	delete(f.live, messageID)
}

func (f *fakePlatform) sentCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.sent)
}

func (f *fakePlatform) editCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.edits)
}

func (f *fakePlatform) deletedIDs() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakePlatform) lastContent() MirrorContent {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if len(f.edits) > 0 {
		return f.edits[len(f.edits)-1].Content
	}
	if len(f.sent) > 0 {
		return f.sent[len(f.sent)-1].Content
	}
	return MirrorContent{}
}

func (f *fakePlatform) BotUserID() string {
	return f.botID
}

func (f *fakePlatform) SendMessage(channelID string, content MirrorContent) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.nextID++
	messageID := fmt.Sprintf("mirror-%d", f.nextID)
	f.live[messageID] = true
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, MessageID: messageID, Content: content})
	return messageID, nil
}

func (f *fakePlatform) EditMessage(channelID, messageID string, content MirrorContent) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if !f.live[messageID] {
		return errors.Wrap(ErrNotFound, "unknown message")
	}
	f.edits = append(f.edits, sentMessage{ChannelID: channelID, MessageID: messageID, Content: content})
	return nil
}

func (f *fakePlatform) DeleteMessage(channelID, messageID string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.live, messageID)
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakePlatform) FetchMessage(channelID, messageID string) (*SourceMessage, error) {
	if f.fetchHook != nil {
		f.fetchHook()
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	msg, ok := f.messages[messageID]
	if !ok || msg.ChannelID != channelID {
		return nil, errors.Wrap(ErrNotFound, "unknown message")
	}
	return msg, nil
}

func (f *fakePlatform) ReactionUsers(channelID, messageID, emoji string) ([]string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.reactions[reactionKey(messageID, emoji)]...), nil
}

func (f *fakePlatform) Member(guildID, userID string) (*discordgo.Member, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.gone[userID] {
		return nil, errors.Wrap(ErrNotFound, "unknown member")
	}
	if member, ok := f.members[userID]; ok {
		return member, nil
	}
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}

func (f *fakePlatform) Channel(channelID string) (*discordgo.Channel, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	channel, ok := f.channels[channelID]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "unknown channel")
	}
	return channel, nil
}

type testEnv struct {
	platform   *fakePlatform
	store      *MemoryStore
	aggregator *Aggregator
	board      models.BoardConfig
}

// newTestEnv sets up a guild with a star board in testBoardChannel and one message in testSourceChannel
func newTestEnv(t *testing.T, threshold int) *testEnv {
	t.Helper()

	platform := newFakePlatform()
	platform.addChannel(testGuildID, testSourceChannel, false)
	platform.addChannel(testGuildID, testBoardChannel, false)
	platform.addMessage(testGuildID, testSourceChannel, testMessageID, testAuthorID, testDefaultContent)

	store := NewMemoryStore()
	board := models.NewBoardConfig(testGuildID, models.BoardKindStar, testBoardChannel, testStarEmoji, threshold)
	if err := store.SaveBoard(&board); err != nil {
		t.Fatal(err)
	}

	return &testEnv{
		platform:   platform,
		store:      store,
		aggregator: NewAggregator(platform, store, store, testLogger(), AggregatorOptions{}),
		board:      board,
	}
}

func (e *testEnv) updateBoard(t *testing.T, change func(board *models.BoardConfig)) {
	t.Helper()
	board, err := e.store.BoardByKind(e.board.GuildID, e.board.Kind)
	if err != nil || board == nil {
		t.Fatalf("board missing: %v", err)
	}
	change(board)
	if err = e.store.SaveBoard(board); err != nil {
		t.Fatal(err)
	}
	e.board = *board
}

func (e *testEnv) reaction(userID string) Reaction {
	return Reaction{
		GuildID:   testGuildID,
		ChannelID: testSourceChannel,
		MessageID: testMessageID,
		UserID:    userID,
		Emoji:     e.board.Emoji,
	}
}

func (e *testEnv) record(t *testing.T) *models.MirrorRecord {
	t.Helper()
	record, err := e.store.Get(models.MirrorKey{
		GuildID:   testGuildID,
		ChannelID: testSourceChannel,
		MessageID: testMessageID,
		Emoji:     e.board.Emoji,
	})
	if err != nil {
		t.Fatal(err)
	}
	return record
}
