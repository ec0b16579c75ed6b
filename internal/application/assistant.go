package application

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"jarvis/internal/domain"
)

// RelayClient is the backend endpoint that forwards text to the LLM
// provider and returns its reply.
type RelayClient interface {
	Ask(ctx context.Context, message string, history []domain.Message) (string, error)
}

// Navigator opens a URL in a new browser context. Fire and forget: no
// return value is consumed beyond logging.
type Navigator interface {
	OpenURL(url string) error
}

// Speaker is the slice of the speech output the orchestrator needs.
type Speaker interface {
	Speak(text string)
}

// historyLimit caps how much transcript goes to the relay per turn.
const historyLimit = 6

// Assistant coordinates one dialogue turn: a finalized utterance or typed
// entry is first offered to the command matcher, and only unmatched text
// goes to the relay.
type Assistant struct {
	matcher *Matcher
	reply   *ReplyMatcher
	timers  *TimerRegistry
	relay   RelayClient
	speaker Speaker
	nav     Navigator
	clock   Clock
	logger  *slog.Logger

	mu       sync.Mutex
	messages []domain.Message
}

func NewAssistant(relay RelayClient, speaker Speaker, nav Navigator, clock Clock, logger *slog.Logger) *Assistant {
	a := &Assistant{
		matcher: NewMatcher(),
		reply:   NewReplyMatcher(),
		relay:   relay,
		speaker: speaker,
		nav:     nav,
		clock:   clock,
		logger:  logger,
	}
	a.timers = NewTimerRegistry(clock, a, logger)
	return a
}

// Timers exposes the registry for display and cancellation endpoints.
func (a *Assistant) Timers() *TimerRegistry { return a.timers }

// HandleSend processes one user turn.
func (a *Assistant) HandleSend(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	a.append(domain.Message{Role: domain.RoleUser, Text: text})

	cmd := a.matcher.Match(text)
	switch cmd.Action {
	case domain.ActionSetTimer:
		a.timers.Start(cmd.DurationSeconds, "Timer")
		return
	case domain.ActionRejected:
		a.Announce(cmd.Refusal)
		return
	case domain.ActionOpenSite:
		a.Announce("Opening " + cmd.SiteName)
		a.openURL(cmd.URL)
		return
	case domain.ActionSearch:
		a.Announce("Searching for " + cmd.Query)
		a.openURL(searchURL(cmd.Query))
		return
	case domain.ActionTellTime:
		a.announceTime()
		return
	}

	history := a.recentHistory()
	reply, err := a.relay.Ask(ctx, text, history)
	if err != nil {
		a.logger.Error("relay call failed", "error", err)
		// Relay failures show up in the transcript but are never spoken.
		a.append(domain.Message{Role: domain.RoleSystem, Text: "Error: " + err.Error()})
		return
	}

	a.Announce(reply)
	a.runReplyActions(reply)
}

// Announce appends an assistant message and speaks it. It is the registry's
// notification sink as well.
func (a *Assistant) Announce(text string) {
	a.append(domain.Message{Role: domain.RoleAssistant, Text: text})
	a.speaker.Speak(text)
}

// runReplyActions gives the assistant's own reply a second, narrower pass:
// site-open, search, and time phrases embedded in it trigger the same side
// effects. The reply was already shown and spoken, so navigation here does
// not announce again.
func (a *Assistant) runReplyActions(reply string) {
	cmd := a.reply.Match(reply)
	switch cmd.Action {
	case domain.ActionOpenSite:
		a.openURL(cmd.URL)
	case domain.ActionSearch:
		a.openURL(searchURL(cmd.Query))
	case domain.ActionTellTime:
		a.announceTime()
	}
}

func (a *Assistant) announceTime() {
	a.Announce("The time is " + a.clock.Now().Format("03:04 PM"))
}

func (a *Assistant) openURL(target string) {
	if err := a.nav.OpenURL(target); err != nil {
		a.logger.Warn("opening url failed", "url", target, "error", err)
	}
}

func searchURL(query string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

func (a *Assistant) append(msg domain.Message) {
	a.mu.Lock()
	a.messages = append(a.messages, msg)
	a.mu.Unlock()
}

// Messages returns a copy of the transcript in insertion order.
func (a *Assistant) Messages() []domain.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// recentHistory is the last few messages before the turn being sent.
func (a *Assistant) recentHistory() []domain.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	msgs := a.messages
	if n := len(msgs); n > 0 {
		msgs = msgs[:n-1]
	}
	if len(msgs) > historyLimit {
		msgs = msgs[len(msgs)-historyLimit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}
