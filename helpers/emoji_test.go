package helpers

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestNormalizeEmoji(t *testing.T) {
	cases := map[string]string{
		"⭐":                    "⭐",
		"⭐\uFE0F":             "⭐",
		" 🤡 ":                  "🤡",
		"<:pepe:123456789>":    "<:pepe:123456789>",
		"<a:dance:987654321>":  "<a:dance:987654321>",
		"<:pepe:123456789> ":   "<:pepe:123456789>",
	}
	for input, expected := range cases {
		if got := NormalizeEmoji(input); got != expected {
			t.Fatalf("helpers.NormalizeEmoji(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestEmojiFromReaction(t *testing.T) {
	if got := EmojiFromReaction(discordgo.Emoji{Name: "⭐"}); got != "⭐" {
		t.Fatalf("helpers.EmojiFromReaction() failed for unicode emoji, got %q", got)
	}
	if got := EmojiFromReaction(discordgo.Emoji{Name: "pepe", ID: "123"}); got != "<:pepe:123>" {
		t.Fatalf("helpers.EmojiFromReaction() failed for custom emoji, got %q", got)
	}
	if got := EmojiFromReaction(discordgo.Emoji{Name: "dance", ID: "321", Animated: true}); got != "<a:dance:321>" {
		t.Fatalf("helpers.EmojiFromReaction() failed for animated emoji, got %q", got)
	}
}

func TestEmojiAPIName(t *testing.T) {
	if got := EmojiAPIName("<a:dance:321>"); got != "dance:321" {
		t.Fatalf("helpers.EmojiAPIName() failed for custom emoji, got %q", got)
	}
	if got := EmojiAPIName("⭐"); got != "⭐" {
		t.Fatalf("helpers.EmojiAPIName() failed for unicode emoji, got %q", got)
	}
}

func TestIsEmoji(t *testing.T) {
	valid := []string{"⭐", "🤡", "<:pepe:123>", "<a:dance:321>", "👍🏽", "👩\u200D💻", "🇩🇪", "1\u20E3", "❤"}
	for _, text := range valid {
		if !IsEmoji(text) {
			t.Fatalf("helpers.IsEmoji(%q) did not detect a valid emoji", text)
		}
	}

	invalid := []string{"star", "café", "é", "⭐ star", "⭐⭐", "", "<:pepe:abc>", "«"}
	for _, text := range invalid {
		if IsEmoji(text) {
			t.Fatalf("helpers.IsEmoji(%q) detected plain text as emoji", text)
		}
	}

	if !IsDiscordEmoji("<a:dance:321>") || IsDiscordEmoji("⭐") {
		t.Fatal("helpers.IsDiscordEmoji() failed")
	}
}

func TestSameEmoji(t *testing.T) {
	if !SameEmoji("<:old:123>", "<:renamed:123>") {
		t.Fatal("helpers.SameEmoji() did not match a renamed custom emoji")
	}
	if SameEmoji("<:pepe:123>", "<:pepe:456>") {
		t.Fatal("helpers.SameEmoji() matched different custom emoji")
	}
	if !SameEmoji("⭐", "⭐") || SameEmoji("⭐", "🌟") || SameEmoji("", "") {
		t.Fatal("helpers.SameEmoji() failed for unicode emoji")
	}
}
