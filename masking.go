package teamslog

import "strings"

// MaskedValue replaces the value of facts whose name is registered as sensitive.
const MaskedValue = "********"

// factMasker hides the values of sensitive facts before they leave the process.
// Exact names are matched case-sensitively, folded names case-insensitively.
type factMasker struct {
	exact  map[string]struct{}
	folded map[string]struct{}
}

func (m *factMasker) addExact(names ...string) {
	if m.exact == nil {
		m.exact = make(map[string]struct{}, len(names))
	}

	for _, n := range names {
		m.exact[n] = struct{}{}
	}
}

func (m *factMasker) addFolded(names ...string) {
	if m.folded == nil {
		m.folded = make(map[string]struct{}, len(names))
	}

	for _, n := range names {
		m.folded[strings.ToLower(n)] = struct{}{}
	}
}

func (m *factMasker) empty() bool {
	return len(m.exact) == 0 && len(m.folded) == 0
}

func (m *factMasker) masks(name string) bool {
	if _, ok := m.exact[name]; ok {
		return true
	}

	_, ok := m.folded[strings.ToLower(name)]

	return ok
}

// apply masks facts in place. The Sent Date fact is never masked.
func (m *factMasker) apply(facts []Fact) []Fact {
	if m.empty() {
		return facts
	}

	for i := range facts {
		if facts[i].Name != SentDateName && m.masks(facts[i].Name) {
			facts[i].Value = MaskedValue
		}
	}

	return facts
}
