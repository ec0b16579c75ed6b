package application

import (
	"strings"

	"jarvis/internal/domain"
)

// ReplyMatcher scans the assistant's own replies for follow-up actions
// (site opens, searches, time phrases). Its rules are deliberately looser
// than Matcher's and it never matches timers; the two rule sets diverged
// in observed behavior and are kept independent.
type ReplyMatcher struct{}

func NewReplyMatcher() *ReplyMatcher { return &ReplyMatcher{} }

func (m *ReplyMatcher) Match(text string) domain.Command {
	low := strings.ToLower(strings.TrimSpace(text))

	switch {
	case strings.HasPrefix(low, "open youtube"):
		return domain.Command{Action: domain.ActionOpenSite, URL: YouTubeURL, SiteName: "YouTube", RawText: text}
	case strings.HasPrefix(low, "play music"), strings.HasPrefix(low, "open music"):
		return domain.Command{Action: domain.ActionOpenSite, URL: YouTubeMusicURL, SiteName: "YouTube Music", RawText: text}
	case strings.Contains(low, "time"):
		return domain.Command{Action: domain.ActionTellTime, RawText: text}
	}

	// Note: no trailing space required here, unlike the user-facing rule.
	if strings.HasPrefix(low, "search") {
		query := strings.TrimSpace(strings.TrimPrefix(low, "search"))
		if query != "" {
			return domain.Command{Action: domain.ActionSearch, Query: query, RawText: text}
		}
	}

	return domain.Command{Action: domain.ActionNone, RawText: text}
}
