package helpers

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

var ErrInvalidColor = errors.New("invalid color")

// NormalizeColor turns "ffd700", "#FFD700" or "#fd0" into "#ffd700"
func NormalizeColor(text string) (string, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.TrimPrefix(text, "#")
	if len(text) == 3 {
		text = strings.Repeat(text[0:1], 2) + strings.Repeat(text[1:2], 2) + strings.Repeat(text[2:3], 2)
	}

	color, err := colorful.Hex("#" + text)
	if err != nil {
		return "", errors.Wrap(ErrInvalidColor, text)
	}
	return color.Hex(), nil
}

// GetDiscordColorFromHex returns the embed color for a hex string, 0 if it can not be parsed
func GetDiscordColorFromHex(hex string) int {
	normalized, err := NormalizeColor(hex)
	if err != nil {
		return 0
	}
	color, _ := colorful.Hex(normalized)
	r, g, b := color.RGB255()
	return int(r)<<16 | int(g)<<8 | int(b)
}

// GetHexFromDiscordColor is the inverse of GetDiscordColorFromHex
func GetHexFromDiscordColor(color int) string {
	return fmt.Sprintf("#%06x", color&0xffffff)
}
