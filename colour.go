package teamslog

// Colour is a six digit RGB hex value without the leading '#'.
type Colour string

// DefaultColour is used for level names that are not recognised.
const DefaultColour Colour = "607d8b"

var levelColourMap = map[string]Colour{
	"debug":     "9e9e9e",
	"info":      "4caf50",
	"notice":    "00bcd4",
	"warning":   "ffc107",
	"error":     "ff5722",
	"critical":  "f44336",
	"alert":     "b71c1c",
	"emergency": "721818",
}

// ColourFor returns the theme colour for a level name.
// The lookup is case-insensitive and understands the aliases accepted by
// ParseLevel; anything else maps to DefaultColour.
func ColourFor(levelName string) Colour {
	if c, ok := levelColourMap[canonicalLevelName(levelName)]; ok {
		return c
	}

	return DefaultColour
}

// String implements fmt.Stringer.
func (c Colour) String() string {
	return string(c)
}
