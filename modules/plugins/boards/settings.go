package boards

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Seklfreak/starlight/helpers"
	"github.com/Seklfreak/starlight/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultThreshold = 3
	TopLimit         = 10

	resetConcurrency = 4
	resetInterval    = 250 * time.Millisecond
)

// Flag is a boolean board setting
type Flag string

const (
	FlagSelfStar    Flag = "selfstar"
	FlagTimestamp   Flag = "timestamp"
	FlagAttachments Flag = "attachments"
	FlagJumpURL     Flag = "jumpurl"
)

var Flags = []Flag{FlagSelfStar, FlagTimestamp, FlagAttachments, FlagJumpURL}

// ResetResult tells how a reset went, mirror messages that could not be deleted are only counted
type ResetResult struct {
	Records int
	Deleted int
	Failed  int
}

// Settings changes the boards of a guild
type Settings struct {
	store      Store
	aggregator *Aggregator
	log        *logrus.Entry
}

func NewSettings(store Store, aggregator *Aggregator, log *logrus.Entry) *Settings {
	return &Settings{
		store:      store,
		aggregator: aggregator,
		log:        log,
	}
}

func (s *Settings) Store() Store {
	return s.store
}

// Get returns the board of the kind, ErrNoBoard if there is none
func (s *Settings) Get(guildID string, kind models.BoardKind) (*models.BoardConfig, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	board, err := s.store.BoardByKind(guildID, kind)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, ErrNoBoard
	}
	return board, nil
}

// Set creates a new board
func (s *Settings) Set(guildID string, kind models.BoardKind, channelID, emoji string, threshold int) (*models.BoardConfig, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if emoji == "" {
		emoji = kind.DefaultEmoji()
	}
	emoji = helpers.NormalizeEmoji(emoji)
	if !helpers.IsEmoji(emoji) {
		return nil, ErrInvalidEmoji
	}
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if threshold < 1 {
		return nil, ErrInvalidThreshold
	}

	existing, err := s.store.BoardByKind(guildID, kind)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBoardExists
	}
	if err = s.checkEmojiFree(guildID, kind, emoji); err != nil {
		return nil, err
	}

	board := models.NewBoardConfig(guildID, kind, channelID, emoji, threshold)
	if err = s.store.SaveBoard(&board); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"guild": guildID, "kind": kind, "channel": channelID}).Info("board set")
	return &board, nil
}

func (s *Settings) checkEmojiFree(guildID string, kind models.BoardKind, emoji string) error {
	other, err := s.store.Board(guildID, emoji)
	if err != nil {
		return err
	}
	if other != nil && other.Kind != kind {
		return ErrEmojiInUse
	}
	return nil
}

func (s *Settings) update(guildID string, kind models.BoardKind, change func(board *models.BoardConfig) error) (*models.BoardConfig, error) {
	board, err := s.Get(guildID, kind)
	if err != nil {
		return nil, err
	}
	if err = change(board); err != nil {
		return nil, err
	}
	if err = s.store.SaveBoard(board); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *Settings) SetChannel(guildID string, kind models.BoardKind, channelID string) (*models.BoardConfig, error) {
	return s.update(guildID, kind, func(board *models.BoardConfig) error {
		board.ChannelID = channelID
		return nil
	})
}

func (s *Settings) SetEmoji(guildID string, kind models.BoardKind, emoji string) (*models.BoardConfig, error) {
	emoji = helpers.NormalizeEmoji(emoji)
	if !helpers.IsEmoji(emoji) {
		return nil, ErrInvalidEmoji
	}
	if err := s.checkEmojiFree(guildID, kind, emoji); err != nil {
		return nil, err
	}
	return s.update(guildID, kind, func(board *models.BoardConfig) error {
		board.Emoji = emoji
		return nil
	})
}

func (s *Settings) SetThreshold(guildID string, kind models.BoardKind, threshold int) (*models.BoardConfig, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold
	}
	return s.update(guildID, kind, func(board *models.BoardConfig) error {
		board.Threshold = threshold
		return nil
	})
}

// SetColor sets the embed color, an empty color falls back to the author's color
func (s *Settings) SetColor(guildID string, kind models.BoardKind, color string) (*models.BoardConfig, error) {
	if color != "" {
		var err error
		color, err = helpers.NormalizeColor(color)
		if err != nil {
			return nil, err
		}
	}
	return s.update(guildID, kind, func(board *models.BoardConfig) error {
		board.Color = color
		return nil
	})
}

func (s *Settings) SetFlag(guildID string, kind models.BoardKind, flag Flag, value bool) (*models.BoardConfig, error) {
	return s.update(guildID, kind, func(board *models.BoardConfig) error {
		switch flag {
		case FlagSelfStar:
			board.SelfStar = value
		case FlagTimestamp:
			board.ShowTimestamp = value
		case FlagAttachments:
			board.ShowAttachments = value
		case FlagJumpURL:
			board.ShowJumpURL = value
		}
		return nil
	})
}

func (s *Settings) Lock(guildID string, kind models.BoardKind) (*models.BoardConfig, error) {
	return s.update(guildID, kind, func(board *models.BoardConfig) error {
		if board.Locked {
			return ErrAlreadyLocked
		}
		board.Locked = true
		return nil
	})
}

func (s *Settings) Unlock(guildID string, kind models.BoardKind) (*models.BoardConfig, error) {
	return s.update(guildID, kind, func(board *models.BoardConfig) error {
		if !board.Locked {
			return ErrNotLocked
		}
		board.Locked = false
		return nil
	})
}

// ToggleIgnore adds entry to the ignore list or removes it if it is already on it
func (s *Settings) ToggleIgnore(guildID string, kind models.BoardKind, entry string) (added bool, err error) {
	_, err = s.update(guildID, kind, func(board *models.BoardConfig) error {
		entries := make([]string, 0, len(board.IgnoreEntries)+1)
		for _, ignored := range board.IgnoreEntries {
			if ignored != entry {
				entries = append(entries, ignored)
			}
		}
		added = len(entries) == len(board.IgnoreEntries)
		if added {
			entries = append(entries, entry)
		}
		board.IgnoreEntries = entries
		return nil
	})
	return added, err
}

func (s *Settings) Ignored(guildID string, kind models.BoardKind) ([]string, error) {
	board, err := s.Get(guildID, kind)
	if err != nil {
		return nil, err
	}
	return board.IgnoreEntries, nil
}

// Top returns the mirrored messages with the highest counts
func (s *Settings) Top(guildID string, kind models.BoardKind, limit int) ([]models.MirrorRecord, error) {
	if _, err := s.Get(guildID, kind); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > TopLimit {
		limit = TopLimit
	}
	return s.store.MirrorsByKind(guildID, kind, limit)
}

// Reset deletes the board and all its records, then tries to delete the posted mirror messages
func (s *Settings) Reset(ctx context.Context, guildID string, kind models.BoardKind) (ResetResult, error) {
	var result ResetResult
	log := s.log.WithFields(logrus.Fields{"guild": guildID, "kind": kind})

	unlock := s.aggregator.LockGuild(guildID)
	if _, err := s.Get(guildID, kind); err != nil {
		unlock()
		return result, err
	}
	records, err := s.store.MirrorsByKind(guildID, kind, 0)
	if err != nil {
		unlock()
		return result, err
	}
	if err = s.store.DeleteBoard(guildID, kind); err != nil {
		unlock()
		return result, err
	}
	if _, err = s.store.DeleteMirrorsByKind(guildID, kind); err != nil {
		unlock()
		return result, err
	}
	unlock()

	result.Records = len(records)

	limiter := rate.NewLimiter(rate.Every(resetInterval), resetConcurrency)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(resetConcurrency)

	var deleted, failed int32
	for i := range records {
		record := &records[i]
		group.Go(func() error {
			if err := limiter.Wait(groupCtx); err != nil {
				return err
			}
			if s.aggregator.deleteMirrorMessage(log.WithField("message", record.MessageID), record) {
				atomic.AddInt32(&deleted, 1)
			} else {
				atomic.AddInt32(&failed, 1)
			}
			return nil
		})
	}
	err = group.Wait()

	result.Deleted = int(deleted)
	result.Failed = result.Records - result.Deleted
	log.WithFields(logrus.Fields{
		"records": result.Records,
		"deleted": result.Deleted,
		"failed":  failed,
	}).Info("board reset")
	return result, err
}
