package helpers

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	// single code points and ranges of the emoji blocks, https://en.wikipedia.org/wiki/Emoji#Unicode_blocks
	emojiElement = `[\x{00A9}\x{00AE}\x{203C}\x{2049}\x{2122}\x{2139}\x{2194}-\x{21AA}\x{231A}-\x{23FF}\x{24C2}` +
		`\x{25AA}-\x{27BF}\x{2934}\x{2935}\x{2B05}-\x{2B55}\x{3030}\x{303D}\x{3297}\x{3299}\x{1F000}-\x{1FAFF}]`
	// variation selector, skin tones and tag sequences
	emojiModifier = `[\x{FE0F}\x{1F3FB}-\x{1F3FF}\x{E0020}-\x{E007F}]*`
	emojiSequence = emojiElement + emojiModifier + `(?:\x{200D}` + emojiElement + emojiModifier + `)*`
	emojiKeycap   = `[0-9#*]\x{FE0F}?\x{20E3}`
	emojiFlag     = `[\x{1F1E6}-\x{1F1FF}]{2}`
)

var (
	unicodeEmojiRegex = regexp.MustCompile(`^(?:` + emojiFlag + `|` + emojiKeycap + `|` + emojiSequence + `)$`)
	discordEmojiRegex = regexp.MustCompile(`^<(a)?:([^<>:]+):([0-9]+)>$`)
)

// returns true if text is exactly one unicode emoji or a discord custom emoji, returns false for everything else
func IsEmoji(text string) (isEmoji bool) {
	return IsUnicodeEmoji(text) || IsDiscordEmoji(text)
}

// returns true if text is exactly one unicode emoji, returns false for everything else
func IsUnicodeEmoji(text string) (isEmoji bool) {
	return unicodeEmojiRegex.MatchString(text)
}

// returns true if text is a discord custom emoji, returns false for everything else
func IsDiscordEmoji(text string) (isEmoji bool) {
	return discordEmojiRegex.MatchString(text)
}

// NormalizeEmoji returns the form emoji are stored and compared in:
// the unicode literal without variation selectors, or <:name:id> / <a:name:id>
func NormalizeEmoji(text string) string {
	text = strings.TrimSpace(text)
	if parts := discordEmojiRegex.FindStringSubmatch(text); parts != nil {
		if parts[1] != "" {
			return "<a:" + parts[2] + ":" + parts[3] + ">"
		}
		return "<:" + parts[2] + ":" + parts[3] + ">"
	}
	return strings.Replace(text, "\uFE0F", "", -1)
}

// EmojiFromReaction returns the normalized form of a reaction emoji
func EmojiFromReaction(emoji discordgo.Emoji) string {
	if emoji.ID != "" {
		name := emoji.Name
		if name == "" {
			name = "_"
		}
		if emoji.Animated {
			return "<a:" + name + ":" + emoji.ID + ">"
		}
		return "<:" + name + ":" + emoji.ID + ">"
	}
	return NormalizeEmoji(emoji.Name)
}

// EmojiAPIName turns a normalized emoji into the name:id form the reactions endpoints expect
func EmojiAPIName(normalized string) string {
	if parts := discordEmojiRegex.FindStringSubmatch(normalized); parts != nil {
		return parts[2] + ":" + parts[3]
	}
	return normalized
}

// EmojiKey returns what two normalized emoji are compared by:
// the id for custom emoji, they keep working after a rename, the emoji itself otherwise
func EmojiKey(normalized string) string {
	if parts := discordEmojiRegex.FindStringSubmatch(normalized); parts != nil {
		return parts[3]
	}
	return normalized
}

// SameEmoji returns true if both normalized emoji are the same emoji
func SameEmoji(a, b string) bool {
	return a != "" && EmojiKey(a) == EmojiKey(b)
}
