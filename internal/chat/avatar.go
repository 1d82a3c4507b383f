package chat

import (
	"strings"
	"unicode"

	"connect-chat/internal/models"
)

var avatarPalette = []string{"#FF6633", "#FFB399", "#FF33FF", "#FFFF99", "#00B3E6"}

// avatarFor derives a stable avatar from the username: its first rune
// uppercased, colored by a hash of that rune into the palette.
func avatarFor(username string) models.Avatar {
	runes := []rune(strings.TrimSpace(username))
	if len(runes) == 0 {
		return models.Avatar{Initial: "?", Color: avatarPalette[0]}
	}
	initial := unicode.ToUpper(runes[0])
	return models.Avatar{
		Initial: string(initial),
		Color:   avatarPalette[int(initial)%len(avatarPalette)],
	}
}
