package boards

import (
	"sort"
	"sync"

	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/models"
)

// MemoryStore keeps boards and mirror records in memory.
// It is used when no database is configured and in tests.
type MemoryStore struct {
	mutex   sync.RWMutex
	boards  map[string]map[models.BoardKind]models.BoardConfig
	mirrors map[models.MirrorKey]models.MirrorRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boards:  make(map[string]map[models.BoardKind]models.BoardConfig),
		mirrors: make(map[models.MirrorKey]models.MirrorRecord),
	}
}

func copyBoard(board models.BoardConfig) models.BoardConfig {
	board.IgnoreEntries = append([]string{}, board.IgnoreEntries...)
	return board
}

func (m *MemoryStore) Board(guildID, emoji string) (*models.BoardConfig, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, board := range m.boards[guildID] {
		if helpers.SameEmoji(board.Emoji, emoji) {
			result := copyBoard(board)
			return &result, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) Boards(guildID string) ([]models.BoardConfig, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	result := make([]models.BoardConfig, 0, len(m.boards[guildID]))
	for _, board := range m.boards[guildID] {
		result = append(result, copyBoard(board))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})
	return result, nil
}

func (m *MemoryStore) BoardByKind(guildID string, kind models.BoardKind) (*models.BoardConfig, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	board, ok := m.boards[guildID][kind]
	if !ok {
		return nil, nil
	}
	result := copyBoard(board)
	return &result, nil
}

func (m *MemoryStore) SaveBoard(board *models.BoardConfig) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.boards[board.GuildID]; !ok {
		m.boards[board.GuildID] = make(map[models.BoardKind]models.BoardConfig)
	}
	m.boards[board.GuildID][board.Kind] = copyBoard(*board)
	return nil
}

func (m *MemoryStore) DeleteBoard(guildID string, kind models.BoardKind) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.boards[guildID], kind)
	if len(m.boards[guildID]) <= 0 {
		delete(m.boards, guildID)
	}
	return nil
}

func (m *MemoryStore) DeleteBoardsByChannel(guildID, channelID string) (deleted int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for kind, board := range m.boards[guildID] {
		if board.ChannelID == channelID {
			delete(m.boards[guildID], kind)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryStore) Get(key models.MirrorKey) (*models.MirrorRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	record, ok := m.mirrors[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (m *MemoryStore) Upsert(record *models.MirrorRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.mirrors[record.Key()] = *record
	return nil
}

func (m *MemoryStore) Delete(key models.MirrorKey) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.mirrors, key)
	return nil
}

func (m *MemoryStore) BySource(guildID, channelID, messageID string) ([]models.MirrorRecord, error) {
	return m.filter(func(record models.MirrorRecord) bool {
		return record.GuildID == guildID && record.ChannelID == channelID && record.MessageID == messageID
	}, 0), nil
}

func (m *MemoryStore) DeleteByMirror(guildID string, mirrorMessageIDs []string) (int, error) {
	ids := make(map[string]bool, len(mirrorMessageIDs))
	for _, id := range mirrorMessageIDs {
		ids[id] = true
	}
	return m.deleteWhere(func(record models.MirrorRecord) bool {
		return record.GuildID == guildID && ids[record.MirrorMessageID]
	}), nil
}

func (m *MemoryStore) DeleteByChannel(guildID, channelID string) (int, error) {
	return m.deleteWhere(func(record models.MirrorRecord) bool {
		return record.GuildID == guildID && (record.ChannelID == channelID || record.MirrorChannelID == channelID)
	}), nil
}

func (m *MemoryStore) MirrorsByKind(guildID string, kind models.BoardKind, limit int) ([]models.MirrorRecord, error) {
	return m.filter(func(record models.MirrorRecord) bool {
		return record.GuildID == guildID && record.Kind == kind
	}, limit), nil
}

func (m *MemoryStore) DeleteMirrorsByKind(guildID string, kind models.BoardKind) (int, error) {
	return m.deleteWhere(func(record models.MirrorRecord) bool {
		return record.GuildID == guildID && record.Kind == kind
	}), nil
}

// filter returns the matching records ordered by count, highest first
func (m *MemoryStore) filter(match func(models.MirrorRecord) bool, limit int) []models.MirrorRecord {
	m.mutex.RLock()
	result := make([]models.MirrorRecord, 0)
	for _, record := range m.mirrors {
		if match(record) {
			result = append(result, record)
		}
	}
	m.mutex.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].MessageID < result[j].MessageID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (m *MemoryStore) deleteWhere(match func(models.MirrorRecord) bool) (deleted int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for key, record := range m.mirrors {
		if match(record) {
			delete(m.mirrors, key)
			deleted++
		}
	}
	return deleted
}
