package application

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"jarvis/internal/domain"
)

const (
	YouTubeURL      = "https://www.youtube.com"
	YouTubeMusicURL = "https://music.youtube.com"

	// RefusalTooLong is the fixed refusal for over-long timer requests.
	// A refused timer still counts as handled locally.
	RefusalTooLong = "I won't set timers longer than 24 hours."

	MaxTimerSeconds = 24 * 3600
)

// timerPattern captures a number and an optional unit anywhere in the text.
var timerPattern = regexp.MustCompile(`(?i)(?:set (?:a )?timer(?: for)?|timer|in)\s*([0-9]+(?:\.[0-9]+)?)\s*(seconds|second|secs|sec|s|minutes|minute|mins|min|m)?`)

// Matcher decides whether free text is a locally handleable command. It is
// pure: case-insensitive, no state, no I/O.
type Matcher struct {
	rules []func(string) (domain.Command, bool)
}

func NewMatcher() *Matcher {
	m := &Matcher{}
	// First match wins. The patterns overlap ("open youtube and search
	// cats" must resolve to OpenSite), so this order is load-bearing.
	m.rules = []func(string) (domain.Command, bool){
		matchTimer,
		matchOpenSite,
		matchSearch,
		matchTellTime,
	}
	return m
}

func (m *Matcher) Match(text string) domain.Command {
	low := strings.ToLower(strings.TrimSpace(text))
	if low == "" {
		return domain.Command{Action: domain.ActionNone, RawText: text}
	}
	for _, rule := range m.rules {
		if cmd, ok := rule(low); ok {
			cmd.RawText = text
			return cmd
		}
	}
	return domain.Command{Action: domain.ActionNone, RawText: text}
}

func matchTimer(low string) (domain.Command, bool) {
	groups := timerPattern.FindStringSubmatch(low)
	if groups == nil {
		return domain.Command{}, false
	}

	value, err := strconv.ParseFloat(groups[1], 64)
	if err != nil {
		// The pattern should prevent this; treat it as no match,
		// never as a fault.
		return domain.Command{}, false
	}

	unit := groups[2]
	if unit == "" {
		unit = "seconds"
	}
	seconds := value
	if strings.HasPrefix(unit, "m") {
		seconds = value * 60
	}

	if math.IsInf(seconds, 0) || math.IsNaN(seconds) || seconds <= 0 {
		// Not a usable duration; let the later rules have a look.
		return domain.Command{}, false
	}
	if seconds > MaxTimerSeconds {
		return domain.Command{Action: domain.ActionRejected, Refusal: RefusalTooLong}, true
	}
	return domain.Command{Action: domain.ActionSetTimer, DurationSeconds: seconds}, true
}

func matchOpenSite(low string) (domain.Command, bool) {
	if strings.HasPrefix(low, "open youtube") || low == "youtube" {
		return domain.Command{Action: domain.ActionOpenSite, URL: YouTubeURL, SiteName: "YouTube"}, true
	}
	if strings.HasPrefix(low, "play music") || strings.HasPrefix(low, "open music") || low == "music" {
		return domain.Command{Action: domain.ActionOpenSite, URL: YouTubeMusicURL, SiteName: "YouTube Music"}, true
	}
	return domain.Command{}, false
}

func matchSearch(low string) (domain.Command, bool) {
	if !strings.HasPrefix(low, "search ") {
		return domain.Command{}, false
	}
	query := strings.TrimSpace(strings.TrimPrefix(low, "search "))
	if query == "" {
		return domain.Command{}, false
	}
	return domain.Command{Action: domain.ActionSearch, Query: query}, true
}

func matchTellTime(low string) (domain.Command, bool) {
	if low == "what's the time" || strings.Contains(low, "what time") || strings.Contains(low, "current time") {
		return domain.Command{Action: domain.ActionTellTime}, true
	}
	return domain.Command{}, false
}
