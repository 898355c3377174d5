package teamslog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
)

type nilSafeError struct{ msg string }

func (e *nilSafeError) Error() string { return e.msg }

type nilSafeStringer struct{ name string }

func (s *nilSafeStringer) String() string { return s.name }

type panickingStringer struct{}

func (panickingStringer) String() string { panic("no name") }

type codedError struct {
	code int
}

func (e *codedError) Error() string { return fmt.Sprintf("request failed with code %d", e.code) }
func (e *codedError) Code() int     { return e.code }

// freezeTime hijacks timeNow for the duration of the test.
func freezeTime(t *testing.T, at time.Time) {
	t.Helper()

	original := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = original })
}

func factNames(facts []Fact) []string {
	names := make([]string, len(facts))
	for i, f := range facts {
		names[i] = f.Name
	}

	return names
}

// TestNormalize verifies the conversion of record context into facts.
func TestNormalize(t *testing.T) {
	freezeTime(t, time.Date(2025, 3, 4, 9, 15, 0, 0, time.UTC))

	t.Run("Empty context yields only Sent Date", func(t *testing.T) {
		facts, action := Normalize(nil)

		if len(facts) != 1 || facts[0].Name != SentDateName {
			t.Fatalf("expected a single Sent Date fact, got %+v", facts)
		}
		if facts[0].Value != "Tue, Mar 04 2025 09:15:00 UTC" {
			t.Errorf("unexpected Sent Date value: %q", facts[0].Value)
		}
		if action != nil {
			t.Errorf("expected no action, got %+v", action)
		}
	})

	t.Run("Sent Date format", func(t *testing.T) {
		loc := time.FixedZone("CET", 3600)
		got := formatSentDate(time.Date(2024, 12, 31, 23, 5, 9, 0, loc))

		re := regexp.MustCompile(`^[A-Z][a-z]{2}, [A-Z][a-z]{2} \d{2} \d{4} \d{2}:\d{2}:\d{2} \S+$`)
		if !re.MatchString(got) {
			t.Errorf("Sent Date %q does not match the expected pattern", got)
		}
		if got != "Tue, Dec 31 2024 23:05:09 CET" {
			t.Errorf("unexpected Sent Date: %q", got)
		}
	})

	t.Run("Order is kept and Sent Date is last", func(t *testing.T) {
		facts, _ := Normalize([]Field{
			F("Invoice", "INV-1"),
			Any("attempt", 3),
			Any("retry", true),
		})

		want := []string{"Invoice", "attempt", "retry", SentDateName}
		if got := factNames(facts); strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("unexpected fact order: got %v, want %v", got, want)
		}
		if facts[1].Value != "3" || facts[2].Value != "true" {
			t.Errorf("unexpected scalar values: %+v", facts)
		}
	})

	t.Run("Snooze becomes an action", func(t *testing.T) {
		facts, action := Normalize([]Field{Snooze("http://x")})

		if len(facts) != 1 || facts[0].Name != SentDateName {
			t.Errorf("expected only Sent Date to remain, got %+v", facts)
		}
		if action == nil {
			t.Fatal("expected a snooze action")
		}
		if action.TargetURI() != "http://x" {
			t.Errorf("unexpected target URI: %q", action.TargetURI())
		}
		if action.Type != "OpenUri" || action.Name != "Snooze" || action.Targets[0].OS != "default" {
			t.Errorf("unexpected action shape: %+v", action)
		}
	})

	t.Run("Last snooze wins", func(t *testing.T) {
		facts, action := Normalize([]Field{
			Snooze("http://first"),
			F("host", "db-1"),
			Any(SnoozeKey, "http://last"),
		})

		if action.TargetURI() != "http://last" {
			t.Errorf("expected the last snooze to win, got %q", action.TargetURI())
		}
		if got := factNames(facts); strings.Join(got, ",") != "host,"+SentDateName {
			t.Errorf("all snooze facts should be removed, got %v", got)
		}
	})

	t.Run("Error expands into five facts", func(t *testing.T) {
		err := &codedError{code: 503}
		facts, _ := Normalize([]Field{F("before", "1"), Err("err", err), F("after", "2")})

		want := []string{"before", "Message", "Error Code", "File", "Line", "Stack Trace", "after", SentDateName}
		if got := factNames(facts); strings.Join(got, ",") != strings.Join(want, ",") {
			t.Fatalf("unexpected facts: got %v, want %v", got, want)
		}

		if facts[1].Value != err.Error() {
			t.Errorf("unexpected message fact: %q", facts[1].Value)
		}
		if facts[2].Value != "503" {
			t.Errorf("unexpected code fact: %q", facts[2].Value)
		}
		if !strings.HasSuffix(facts[3].Value, "fact_test.go") {
			t.Errorf("expected the file of the Err call, got %q", facts[3].Value)
		}
		if facts[4].Value == "0" || facts[4].Value == "" {
			t.Errorf("expected a line number, got %q", facts[4].Value)
		}
		if !strings.Contains(facts[5].Value, "TestNormalize") {
			t.Errorf("stack trace should contain the calling test, got %q", facts[5].Value)
		}
	})

	t.Run("Error with its own stack", func(t *testing.T) {
		err := pkgerrors.Wrap(errors.New("disk full"), "write segment")
		facts, _ := Normalize([]Field{Err("err", err)})

		if facts[0].Value != "write segment: disk full" {
			t.Errorf("unexpected message: %q", facts[0].Value)
		}
		if facts[1].Value != "0" {
			t.Errorf("expected default code 0, got %q", facts[1].Value)
		}
		if !strings.HasSuffix(facts[2].Value, "fact_test.go") {
			t.Errorf("expected the file where the error was wrapped, got %q", facts[2].Value)
		}
		if !strings.Contains(facts[4].Value, "fact_test.go:") {
			t.Errorf("stack trace should come from the error, got %q", facts[4].Value)
		}
	})

	t.Run("Any with an error value", func(t *testing.T) {
		f := Any("error", errors.New("boom"))
		if !f.IsError() {
			t.Fatal("Any should turn errors into error fields")
		}
		if f.Details().Message != "boom" {
			t.Errorf("unexpected details: %+v", f.Details())
		}
	})

	t.Run("Malformed entry falls back to an unnamed fact", func(t *testing.T) {
		facts, _ := Normalize([]Field{{}})

		if len(facts) != 2 {
			t.Fatalf("expected the malformed fact and Sent Date, got %+v", facts)
		}
		if facts[0].Name != "" || facts[0].Value != "" {
			t.Errorf("unexpected fallback fact: %+v", facts[0])
		}
	})

	t.Run("Nil pointers render as <nil>", func(t *testing.T) {
		var (
			nilErr      *nilSafeError
			nilStringer *nilSafeStringer
		)

		facts, _ := Normalize([]Field{
			Any("error", nilErr),
			Err("cause", nilErr),
			Any("user", nilStringer),
			Err("none", nil),
		})

		want := []Fact{
			{Name: "error", Value: "<nil>"},
			{Name: "cause", Value: "<nil>"},
			{Name: "user", Value: "<nil>"},
			{Name: "none", Value: ""},
		}
		for i, w := range want {
			if facts[i] != w {
				t.Errorf("fact %d: got %+v, want %+v", i, facts[i], w)
			}
		}
	})

	t.Run("Panicking methods do not escape", func(t *testing.T) {
		facts, _ := Normalize([]Field{Any("who", panickingStringer{})})

		if facts[0].Value != "<PANIC=no name>" {
			t.Errorf("unexpected value: %q", facts[0].Value)
		}
	})

	t.Run("Composite values are encoded as JSON", func(t *testing.T) {
		facts, _ := Normalize([]Field{Any("tags", []string{"a", "b"}), Any("nil", nil)})

		if facts[0].Value != `["a","b"]` {
			t.Errorf("unexpected slice rendering: %q", facts[0].Value)
		}
		if facts[1].Value != "" {
			t.Errorf("unexpected nil rendering: %q", facts[1].Value)
		}
	})
}

// TestFactMasker verifies that sensitive fact values are hidden.
func TestFactMasker(t *testing.T) {
	var m factMasker
	m.addExact("token")
	m.addFolded("Password")

	facts := m.apply([]Fact{
		{Name: "token", Value: "abc"},
		{Name: "Token", Value: "kept"},
		{Name: "PASSWORD", Value: "hunter2"},
		{Name: "user", Value: "gopher"},
	})

	want := []string{MaskedValue, "kept", MaskedValue, "gopher"}
	for i, f := range facts {
		if f.Value != want[i] {
			t.Errorf("fact %q: got %q, want %q", f.Name, f.Value, want[i])
		}
	}
}
