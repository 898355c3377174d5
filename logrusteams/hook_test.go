package logrusteams

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/taknb2nch/teamslog"
)

type card struct {
	Summary  string `json:"summary"`
	Sections []struct {
		ActivityText string          `json:"activityText"`
		Facts        []teamslog.Fact `json:"facts"`
	} `json:"sections"`
}

func newTeams(t *testing.T, opts ...teamslog.Option) (*teamslog.Handler, func() []card) {
	t.Helper()

	var (
		mu    sync.Mutex
		cards []card
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var c card
		if err := json.Unmarshal(body, &c); err != nil {
			t.Errorf("webhook received invalid JSON: %v", err)
		}

		mu.Lock()
		cards = append(cards, c)
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)

	h, err := teamslog.New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("teamslog.New() returned an error: %v", err)
	}

	return h, func() []card {
		mu.Lock()
		defer mu.Unlock()

		return append([]card(nil), cards...)
	}
}

// TestHook verifies that logrus entries reach the webhook.
func TestHook(t *testing.T) {
	teams, cards := newTeams(t, teamslog.WithLevel(teamslog.LevelWarning), teamslog.WithName("worker"))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(New(teams))

	logger.WithFields(logrus.Fields{
		"queue":   "emails",
		"attempt": 3,
	}).WithError(errors.New("smtp timeout")).Error("delivery failed")
	logger.Info("not delivered")

	got := cards()
	if len(got) != 1 {
		t.Fatalf("expected one card, got %d", len(got))
	}
	if got[0].Summary != "ERROR: worker" || got[0].Sections[0].ActivityText != "delivery failed" {
		t.Errorf("unexpected card: %+v", got[0])
	}

	var names []string
	for _, f := range got[0].Sections[0].Facts {
		names = append(names, f.Name)
	}

	// Data keys are sorted: attempt, error, queue.
	want := []string{"attempt", "Message", "Error Code", "File", "Line", "Stack Trace", "queue", teamslog.SentDateName}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("unexpected facts:\ngot  %v\nwant %v", names, want)
	}
}

// TestHookLevels verifies that the hook only registers for handled levels.
func TestHookLevels(t *testing.T) {
	teams, _ := newTeams(t, teamslog.WithLevel(teamslog.LevelError))

	got := New(teams).Levels()
	want := []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Levels() = %v, want %v", got, want)
	}
}

// TestLevel verifies the mapping of logrus levels.
func TestLevel(t *testing.T) {
	tests := []struct {
		in   logrus.Level
		want teamslog.Level
	}{
		{logrus.PanicLevel, teamslog.LevelEmergency},
		{logrus.FatalLevel, teamslog.LevelCritical},
		{logrus.ErrorLevel, teamslog.LevelError},
		{logrus.WarnLevel, teamslog.LevelWarning},
		{logrus.InfoLevel, teamslog.LevelInfo},
		{logrus.DebugLevel, teamslog.LevelDebug},
		{logrus.TraceLevel, teamslog.LevelDebug},
	}

	for _, tt := range tests {
		if got := Level(tt.in); got != tt.want {
			t.Errorf("Level(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
