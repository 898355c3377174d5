package teamslog

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultAvatarBaseURL is the image service used for card avatars.
const DefaultAvatarBaseURL = "https://ui-avatars.com/api/"

// AvatarFor returns the activity image of a card for the given level.
// The result only depends on its arguments, so every record of the same
// severity shows the same picture.
func AvatarFor(levelName string, c Colour) string {
	return avatarURL(DefaultAvatarBaseURL, levelName, c)
}

func avatarURL(base, levelName string, c Colour) string {
	q := url.Values{}
	q.Set("name", avatarInitial(levelName))
	q.Set("background", string(c))
	q.Set("color", "ffffff")
	q.Set("size", "64")
	q.Set("bold", "true")
	q.Set("format", "png")

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}

	// url.Values.Encode sorts keys, which keeps the URL stable.
	return base + sep + q.Encode()
}

func avatarInitial(levelName string) string {
	name := canonicalLevelName(levelName)

	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "?"
	}

	return string(unicode.ToUpper(r))
}
