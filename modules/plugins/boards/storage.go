package boards

import (
	"time"

	"github.com/Seklfreak/starlight/cache"
	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/models"
	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	redisCache "github.com/go-redis/cache"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	boardsCacheKey        = "starlight-discord:boards:by-guild:"
	boardsCacheExpiration = time.Minute * 10
)

// MongoStore persists boards and mirror records in mongodb, board lists are cached in redis if available
type MongoStore struct {
	log *logrus.Entry
}

func NewMongoStore(log *logrus.Entry) *MongoStore {
	return &MongoStore{log: log}
}

func (m *MongoStore) boards() *mgo.Collection {
	return helpers.MdbCollection(models.BoardsTable)
}

func (m *MongoStore) mirrors() *mgo.Collection {
	return helpers.MdbCollection(models.BoardMirrorsTable)
}

func (m *MongoStore) Boards(guildID string) ([]models.BoardConfig, error) {
	var boards []models.BoardConfig

	key := boardsCacheKey + guildID
	if cache.HasRedis() {
		if err := cache.GetRedisCacheCodec().Get(key, &boards); err == nil {
			return boards, nil
		}
	}

	err := m.boards().Find(bson.M{"guildid": guildID}).Sort("kind").All(&boards)
	if err != nil {
		return nil, errors.Wrap(err, "querying boards failed")
	}
	if boards == nil {
		boards = make([]models.BoardConfig, 0)
	}

	if cache.HasRedis() {
		err = cache.GetRedisCacheCodec().Set(&redisCache.Item{
			Key:        key,
			Object:     boards,
			Expiration: boardsCacheExpiration,
		})
		if err != nil {
			m.log.WithField("guild", guildID).WithError(err).Warn("caching boards failed")
		}
	}
	return boards, nil
}

func (m *MongoStore) Board(guildID, emoji string) (*models.BoardConfig, error) {
	boards, err := m.Boards(guildID)
	if err != nil {
		return nil, err
	}
	for i := range boards {
		if helpers.SameEmoji(boards[i].Emoji, emoji) {
			return &boards[i], nil
		}
	}
	return nil, nil
}

func (m *MongoStore) BoardByKind(guildID string, kind models.BoardKind) (*models.BoardConfig, error) {
	boards, err := m.Boards(guildID)
	if err != nil {
		return nil, err
	}
	for i := range boards {
		if boards[i].Kind == kind {
			return &boards[i], nil
		}
	}
	return nil, nil
}

func (m *MongoStore) SaveBoard(board *models.BoardConfig) error {
	defer m.invalidate(board.GuildID)

	_, err := m.boards().Upsert(
		bson.M{"guildid": board.GuildID, "kind": board.Kind},
		bson.M{"$set": bson.M{
			"channelid":       board.ChannelID,
			"emoji":           board.Emoji,
			"threshold":       board.Threshold,
			"color":           board.Color,
			"selfstar":        board.SelfStar,
			"locked":          board.Locked,
			"showtimestamp":   board.ShowTimestamp,
			"showattachments": board.ShowAttachments,
			"showjumpurl":     board.ShowJumpURL,
			"ignoreentries":   board.IgnoreEntries,
		}},
	)
	return errors.Wrap(err, "saving board failed")
}

func (m *MongoStore) DeleteBoard(guildID string, kind models.BoardKind) error {
	defer m.invalidate(guildID)

	err := m.boards().Remove(bson.M{"guildid": guildID, "kind": kind})
	if err != nil && !helpers.IsMdbNotFound(err) {
		return errors.Wrap(err, "deleting board failed")
	}
	return nil
}

func (m *MongoStore) DeleteBoardsByChannel(guildID, channelID string) (int, error) {
	defer m.invalidate(guildID)

	info, err := m.boards().RemoveAll(bson.M{"guildid": guildID, "channelid": channelID})
	if err != nil {
		return 0, errors.Wrap(err, "deleting boards of channel failed")
	}
	return info.Removed, nil
}

func (m *MongoStore) invalidate(guildID string) {
	if !cache.HasRedis() {
		return
	}
	err := cache.GetRedisCacheCodec().Delete(boardsCacheKey + guildID)
	if err != nil && err != redisCache.ErrCacheMiss {
		m.log.WithField("guild", guildID).WithError(err).Warn("invalidating boards cache failed")
	}
}

func mirrorKeyQuery(key models.MirrorKey) bson.M {
	return bson.M{
		"guildid":   key.GuildID,
		"channelid": key.ChannelID,
		"messageid": key.MessageID,
		"emoji":     key.Emoji,
	}
}

func (m *MongoStore) Get(key models.MirrorKey) (*models.MirrorRecord, error) {
	var record models.MirrorRecord
	err := m.mirrors().Find(mirrorKeyQuery(key)).One(&record)
	if err != nil {
		if helpers.IsMdbNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "querying mirror record failed")
	}
	return &record, nil
}

func (m *MongoStore) Upsert(record *models.MirrorRecord) error {
	_, err := m.mirrors().Upsert(
		mirrorKeyQuery(record.Key()),
		bson.M{
			"$set": bson.M{
				"kind":            record.Kind,
				"authorid":        record.AuthorID,
				"mirrorchannelid": record.MirrorChannelID,
				"mirrormessageid": record.MirrorMessageID,
				"count":           record.Count,
				"updatedat":       record.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"createdat": record.CreatedAt,
			},
		},
	)
	return errors.Wrap(err, "saving mirror record failed")
}

func (m *MongoStore) Delete(key models.MirrorKey) error {
	err := m.mirrors().Remove(mirrorKeyQuery(key))
	if err != nil && !helpers.IsMdbNotFound(err) {
		return errors.Wrap(err, "deleting mirror record failed")
	}
	return nil
}

func (m *MongoStore) BySource(guildID, channelID, messageID string) ([]models.MirrorRecord, error) {
	records := make([]models.MirrorRecord, 0)
	err := m.mirrors().Find(bson.M{
		"guildid":   guildID,
		"channelid": channelID,
		"messageid": messageID,
	}).All(&records)
	return records, errors.Wrap(err, "querying mirror records failed")
}

func (m *MongoStore) DeleteByMirror(guildID string, mirrorMessageIDs []string) (int, error) {
	info, err := m.mirrors().RemoveAll(bson.M{
		"guildid":         guildID,
		"mirrormessageid": bson.M{"$in": mirrorMessageIDs},
	})
	if err != nil {
		return 0, errors.Wrap(err, "deleting mirror records failed")
	}
	return info.Removed, nil
}

func (m *MongoStore) DeleteByChannel(guildID, channelID string) (int, error) {
	info, err := m.mirrors().RemoveAll(bson.M{
		"guildid": guildID,
		"$or": []bson.M{
			{"channelid": channelID},
			{"mirrorchannelid": channelID},
		},
	})
	if err != nil {
		return 0, errors.Wrap(err, "deleting mirror records of channel failed")
	}
	return info.Removed, nil
}

func (m *MongoStore) MirrorsByKind(guildID string, kind models.BoardKind, limit int) ([]models.MirrorRecord, error) {
	records := make([]models.MirrorRecord, 0)
	query := m.mirrors().Find(bson.M{"guildid": guildID, "kind": kind}).Sort("-count", "createdat")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.All(&records)
	return records, errors.Wrap(err, "querying mirror records failed")
}

func (m *MongoStore) DeleteMirrorsByKind(guildID string, kind models.BoardKind) (int, error) {
	info, err := m.mirrors().RemoveAll(bson.M{"guildid": guildID, "kind": kind})
	if err != nil {
		return 0, errors.Wrap(err, "deleting mirror records failed")
	}
	return info.Removed, nil
}

// EnsureIndexes creates the unique identity indexes and the lookup indexes the store queries by
func EnsureIndexes() error {
	indexes := map[models.MongoDbCollection][]mgo.Index{
		models.BoardsTable: {
			{Key: []string{"guildid", "kind"}, Unique: true},
			{Key: []string{"guildid", "channelid"}},
		},
		models.BoardMirrorsTable: {
			{Key: []string{"guildid", "channelid", "messageid", "emoji"}, Unique: true},
			{Key: []string{"guildid", "mirrormessageid"}},
			{Key: []string{"guildid", "mirrorchannelid"}},
			{Key: []string{"guildid", "kind", "-count"}},
		},
	}
	for collection, collectionIndexes := range indexes {
		for _, index := range collectionIndexes {
			index.Background = true
			if err := helpers.MdbCollection(collection).EnsureIndex(index); err != nil {
				return errors.Wrapf(err, "creating index %v on %s failed", index.Key, collection)
			}
		}
	}
	return nil
}
