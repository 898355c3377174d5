package teamslog

import (
	"errors"
	"strings"
)

// Style selects the shape of the payload posted to the webhook.
type Style string

const (
	// StyleCard renders a MessageCard with a section, facts and actions.
	StyleCard Style = "card"
	// StyleSimple renders a single line of text.
	StyleSimple Style = "simple"
)

// ParseStyle parses a style name. It is case-insensitive.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleCard:
		return StyleCard, nil
	case StyleSimple:
		return StyleSimple, nil
	}

	return "", errors.New("invalid style: " + s)
}

// Payload is the JSON document posted to the webhook.
type Payload interface {
	Style() Style
}

// CardPayload is the "card" payload.
type CardPayload struct {
	PotentialAction []ActionCard `json:"potentialAction,omitempty"`
	Summary         string       `json:"summary"`
	ThemeColor      Colour       `json:"themeColor"`
	Sections        []Section    `json:"sections"`
}

// Section is the single activity section of a card.
type Section struct {
	ActivityTitle    string `json:"activityTitle"`
	ActivitySubtitle string `json:"activitySubtitle"`
	ActivityText     string `json:"activityText"`
	ActivityImage    string `json:"activityImage"`
	Facts            []Fact `json:"facts"`
	Markdown         bool   `json:"markdown"`
}

// SimplePayload is the "simple" payload.
type SimplePayload struct {
	Text       string `json:"text"`
	ThemeColor Colour `json:"themeColor"`
}

func (p *CardPayload) Style() Style   { return StyleCard }
func (p *SimplePayload) Style() Style { return StyleSimple }

// Render builds the payload of one record. Any style other than StyleCard
// yields a simple payload. Render has no side effects.
func Render(style Style, levelName, message string, facts []Fact, action *ActionCard, senderName string) Payload {
	if style == StyleCard {
		return renderCard(DefaultAvatarBaseURL, levelName, message, facts, action, senderName)
	}

	return renderSimple(levelName, message, senderName)
}

func renderCard(avatarBase, levelName, message string, facts []Fact, action *ActionCard, senderName string) *CardPayload {
	c := ColourFor(levelName)

	summary := levelName
	if senderName != "" {
		summary += ": " + senderName
	}

	if facts == nil {
		facts = []Fact{}
	}

	p := &CardPayload{
		Summary:    summary,
		ThemeColor: c,
		Sections: []Section{{
			ActivityTitle:    senderName,
			ActivitySubtitle: colouredLevel(levelName, c),
			ActivityText:     message,
			ActivityImage:    avatarURL(avatarBase, levelName, c),
			Facts:            facts,
			Markdown:         true,
		}},
	}

	if action != nil {
		p.PotentialAction = []ActionCard{*action}
	}

	return p
}

func renderSimple(levelName, message, senderName string) *SimplePayload {
	c := ColourFor(levelName)

	var b strings.Builder
	if senderName != "" {
		b.WriteString(senderName)
		b.WriteString(" - ")
	}
	b.WriteString(colouredLevel(levelName, c))
	b.WriteString(": ")
	b.WriteString(message)

	return &SimplePayload{Text: b.String(), ThemeColor: c}
}

func colouredLevel(levelName string, c Colour) string {
	return `<span style="color:#` + string(c) + `">` + levelName + `</span>`
}

// --- formatters ---

// Formatter converts a record into the payload sent for it.
type Formatter interface {
	Format(r *Record) (Payload, error)
}

// cardFormatter renders records as cards.
type cardFormatter struct {
	name       string
	avatarBase string
	masker     *factMasker
}

// NewCardFormatter creates a formatter producing card payloads signed by name.
func NewCardFormatter(name string) *cardFormatter {
	return &cardFormatter{name: name, avatarBase: DefaultAvatarBaseURL, masker: &factMasker{}}
}

// Format normalizes the record's context and renders it as a card.
func (f *cardFormatter) Format(r *Record) (Payload, error) {
	facts, action := Normalize(r.Fields)
	facts = f.masker.apply(facts)

	return renderCard(f.avatarBase, r.levelName(), r.Message, facts, action, f.name), nil
}

// simpleFormatter renders records as a single line of text.
// The context of the record is not part of a simple payload.
type simpleFormatter struct {
	name string
}

// NewSimpleFormatter creates a formatter producing simple payloads signed by name.
func NewSimpleFormatter(name string) *simpleFormatter {
	return &simpleFormatter{name: name}
}

// Format renders the record as a simple payload.
func (f *simpleFormatter) Format(r *Record) (Payload, error) {
	return renderSimple(r.levelName(), r.Message, f.name), nil
}
