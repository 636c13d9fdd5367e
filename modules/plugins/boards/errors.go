package boards

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned by a ChatPlatform if the message, channel or member does not exist (anymore)
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned by a ChatPlatform if the bot lacks the permissions for a call
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable is returned by a ChatPlatform while calls are failing fast
	ErrUnavailable = errors.New("platform unavailable")

	ErrNoBoard          = errors.New("no board configured")
	ErrBoardExists      = errors.New("board already configured")
	ErrEmojiInUse       = errors.New("emoji is used by another board")
	ErrInvalidEmoji     = errors.New("invalid emoji")
	ErrInvalidThreshold = errors.New("threshold has to be at least 1")
	ErrInvalidKind      = errors.New("invalid board kind")
	ErrAlreadyLocked    = errors.New("board is already locked")
	ErrNotLocked        = errors.New("board is not locked")
)
