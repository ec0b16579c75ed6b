package application_test

import (
	"testing"

	"jarvis/internal/application"
	"jarvis/internal/domain"
)

func TestMatcher_SetTimer(t *testing.T) {
	m := application.NewMatcher()

	tests := []struct {
		name        string
		input       string
		wantSeconds float64
	}{
		{"full phrase with minutes", "set a timer for 2 minutes", 120},
		{"short phrase", "set timer 10 seconds", 10},
		{"bare timer", "timer 45", 45},
		{"in phrase", "in 5 minutes", 300},
		{"decimal", "set a timer for 1.5 minutes", 90},
		{"single letter unit", "timer 10s", 10},
		{"minute abbreviation", "timer 3 min", 180},
		{"uppercase", "SET A TIMER FOR 30 SECONDS", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := m.Match(tt.input)
			if cmd.Action != domain.ActionSetTimer {
				t.Fatalf("action: got %s, want %s", cmd.Action, domain.ActionSetTimer)
			}
			if cmd.DurationSeconds != tt.wantSeconds {
				t.Errorf("duration: got %v, want %v", cmd.DurationSeconds, tt.wantSeconds)
			}
		})
	}
}

func TestMatcher_TimerRejection(t *testing.T) {
	m := application.NewMatcher()

	cmd := m.Match("set a timer for 1441 minutes")
	if cmd.Action != domain.ActionRejected {
		t.Fatalf("action: got %s, want %s", cmd.Action, domain.ActionRejected)
	}
	if cmd.Refusal != application.RefusalTooLong {
		t.Errorf("refusal: got %q", cmd.Refusal)
	}

	// Exactly at the bound is allowed.
	cmd = m.Match("set a timer for 1440 minutes")
	if cmd.Action != domain.ActionSetTimer {
		t.Fatalf("action at bound: got %s, want %s", cmd.Action, domain.ActionSetTimer)
	}
	if cmd.DurationSeconds != 86400 {
		t.Errorf("duration at bound: got %v", cmd.DurationSeconds)
	}
}

func TestMatcher_ZeroDurationFallsThrough(t *testing.T) {
	m := application.NewMatcher()

	// A zero duration is not a usable timer; the text should fall through
	// to the remaining rules rather than resolve or reject.
	cmd := m.Match("timer 0 seconds")
	if cmd.Action != domain.ActionNone {
		t.Errorf("action: got %s, want %s", cmd.Action, domain.ActionNone)
	}
}

func TestMatcher_OpenSite(t *testing.T) {
	m := application.NewMatcher()

	tests := []struct {
		input    string
		wantURL  string
		wantName string
	}{
		{"open youtube", application.YouTubeURL, "YouTube"},
		{"open youtube please", application.YouTubeURL, "YouTube"},
		{"youtube", application.YouTubeURL, "YouTube"},
		{"play music", application.YouTubeMusicURL, "YouTube Music"},
		{"open music", application.YouTubeMusicURL, "YouTube Music"},
		{"music", application.YouTubeMusicURL, "YouTube Music"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := m.Match(tt.input)
			if cmd.Action != domain.ActionOpenSite {
				t.Fatalf("action: got %s, want %s", cmd.Action, domain.ActionOpenSite)
			}
			if cmd.URL != tt.wantURL {
				t.Errorf("url: got %s, want %s", cmd.URL, tt.wantURL)
			}
			if cmd.SiteName != tt.wantName {
				t.Errorf("site name: got %s, want %s", cmd.SiteName, tt.wantName)
			}
		})
	}
}

func TestMatcher_Priority(t *testing.T) {
	m := application.NewMatcher()

	// Overlapping patterns resolve by rule order: OpenSite beats Search.
	cmd := m.Match("open youtube and search cats")
	if cmd.Action != domain.ActionOpenSite {
		t.Fatalf("action: got %s, want %s", cmd.Action, domain.ActionOpenSite)
	}
	if cmd.URL != application.YouTubeURL {
		t.Errorf("url: got %s", cmd.URL)
	}

	// A timer phrase beats everything after it.
	cmd = m.Match("set a timer for 10 seconds and open youtube")
	if cmd.Action != domain.ActionSetTimer {
		t.Fatalf("action: got %s, want %s", cmd.Action, domain.ActionSetTimer)
	}
}

func TestMatcher_Search(t *testing.T) {
	m := application.NewMatcher()

	cmd := m.Match("search golang generics")
	if cmd.Action != domain.ActionSearch {
		t.Fatalf("action: got %s, want %s", cmd.Action, domain.ActionSearch)
	}
	if cmd.Query != "golang generics" {
		t.Errorf("query: got %q", cmd.Query)
	}

	// An empty query is not a search.
	cmd = m.Match("search   ")
	if cmd.Action != domain.ActionNone {
		t.Errorf("empty query action: got %s, want %s", cmd.Action, domain.ActionNone)
	}
}

func TestMatcher_TellTime(t *testing.T) {
	m := application.NewMatcher()

	for _, input := range []string{
		"what's the time",
		"what time is it",
		"tell me the current time",
		"WHAT TIME IS IT",
	} {
		cmd := m.Match(input)
		if cmd.Action != domain.ActionTellTime {
			t.Errorf("%q: got %s, want %s", input, cmd.Action, domain.ActionTellTime)
		}
	}
}

func TestMatcher_Pure(t *testing.T) {
	m := application.NewMatcher()

	// Matching twice yields the same outcome; no state leaks between calls.
	first := m.Match("what time is it")
	second := m.Match("what time is it")
	if first.Action != second.Action {
		t.Errorf("actions differ: %s vs %s", first.Action, second.Action)
	}
}

func TestMatcher_NoMatch(t *testing.T) {
	m := application.NewMatcher()

	for _, input := range []string{
		"",
		"   ",
		"hello there",
		"what's the weather in Bangalore?",
	} {
		cmd := m.Match(input)
		if cmd.Action != domain.ActionNone {
			t.Errorf("%q: got %s, want %s", input, cmd.Action, domain.ActionNone)
		}
	}
}

func TestReplyMatcher_LooserRules(t *testing.T) {
	m := application.NewReplyMatcher()

	tests := []struct {
		name  string
		input string
		want  domain.Action
	}{
		{"open youtube prefix", "open youtube for the latest videos", domain.ActionOpenSite},
		{"play music prefix", "play music to relax", domain.ActionOpenSite},
		{"bare time mention", "it's tea time!", domain.ActionTellTime},
		{"search without space", "searching the web is easy", domain.ActionSearch},
		{"timer phrases ignored", "set a timer for 10 seconds", domain.ActionTellTime},
		{"plain reply", "the capital of France is Paris", domain.ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := m.Match(tt.input)
			if cmd.Action != tt.want {
				t.Errorf("action: got %s, want %s", cmd.Action, tt.want)
			}
		})
	}
}
