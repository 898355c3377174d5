package teamslog

import (
	"strconv"
	"time"
)

// SentDateName is the name of the fact holding the time a card was built.
const SentDateName = "Sent Date"

// sentDateLayout renders e.g. "Tue, Mar 04 2025 09:15:00"; the zone name is
// appended separately so that IANA names such as "Europe/Berlin" survive.
const sentDateLayout = "Mon, Jan 02 2006 15:04:05"

// timeNow is hijacked by tests for predictable Sent Date facts.
var timeNow = time.Now

// Fact is a name/value pair shown in a card section.
type Fact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ActionCard is an interactive button of a card.
type ActionCard struct {
	Type    string         `json:"@type"`
	Name    string         `json:"name"`
	Targets []ActionTarget `json:"targets"`
}

// ActionTarget is the URI opened by an ActionCard on a given platform.
type ActionTarget struct {
	OS  string `json:"os"`
	URI string `json:"uri"`
}

// NewSnoozeAction returns the "Snooze" button opening uri.
func NewSnoozeAction(uri string) *ActionCard {
	return &ActionCard{
		Type:    "OpenUri",
		Name:    "Snooze",
		Targets: []ActionTarget{{OS: "default", URI: uri}},
	}
}

// TargetURI returns the URI of the first target, or "".
func (a *ActionCard) TargetURI() string {
	if a == nil || len(a.Targets) == 0 {
		return ""
	}

	return a.Targets[0].URI
}

// Normalize turns the context of a record into the facts of a card.
//
// Fields keep their order. An error field expands into the five facts
// "Message", "Error Code", "File", "Line" and "Stack Trace". A "Sent Date"
// fact is always appended. Every fact named "snooze" is then removed; the last
// one becomes the returned action.
func Normalize(fields []Field) ([]Fact, *ActionCard) {
	facts := make([]Fact, 0, len(fields)+1)

	for _, f := range fields {
		facts = appendFacts(facts, f)
	}

	facts = append(facts, Fact{Name: SentDateName, Value: formatSentDate(timeNow())})

	return extractSnooze(facts)
}

func appendFacts(facts []Fact, f Field) []Fact {
	switch f.kind {
	case fieldKindError:
		d := f.err

		return append(facts,
			Fact{Name: "Message", Value: d.Message},
			Fact{Name: "Error Code", Value: d.Code},
			Fact{Name: "File", Value: d.File},
			Fact{Name: "Line", Value: strconv.Itoa(d.Line)},
			Fact{Name: "Stack Trace", Value: d.Trace},
		)
	case fieldKindNamedValue, fieldKindScalar:
		return append(facts, Fact{Name: f.Key, Value: f.Value()})
	default:
		// Malformed entry: keep whatever it holds under its key, if any.
		return append(facts, Fact{Name: f.Key, Value: f.Value()})
	}
}

func extractSnooze(facts []Fact) ([]Fact, *ActionCard) {
	var action *ActionCard

	kept := facts[:0]
	for _, f := range facts {
		if f.Name == SnoozeKey {
			action = NewSnoozeAction(f.Value)

			continue
		}

		kept = append(kept, f)
	}

	return kept, action
}

func formatSentDate(t time.Time) string {
	zone := t.Location().String()
	if zone == "Local" || zone == "" {
		zone = t.Format("MST")
	}

	return t.Format(sentDateLayout) + " " + zone
}
