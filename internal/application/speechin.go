package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"jarvis/internal/domain"
)

// RecognitionResult is one transcript fragment within a recognition event.
type RecognitionResult struct {
	Text  string
	Final bool
}

// RecognitionEvent is one provider callback: a batch of results, a
// provider error, or the natural end of the session.
type RecognitionEvent struct {
	Results []RecognitionResult
	Err     error
	End     bool
}

// Recognizer is the speech recognition provider: one continuous session at
// a time, streaming interim and final results until stopped or ended.
type Recognizer interface {
	Start(ctx context.Context) (<-chan RecognitionEvent, error)
	Stop()
}

// PermissionChecker resolves the one-time microphone permission.
type PermissionChecker interface {
	RequestMicrophone(ctx context.Context) error
}

// SpeechInput wraps the recognition session. It has exactly two states,
// idle and listening; provider errors and natural ends both return it to
// idle without escalating.
type SpeechInput struct {
	rec     Recognizer
	perm    PermissionChecker
	onFinal func(text string)
	logger  *slog.Logger

	mu        sync.Mutex
	listening bool
	granted   bool
	interim   string
	lastFinal string
}

// NewSpeechInput builds the controller. onFinal receives each finalized
// utterance, one call per recognition event carrying final results.
func NewSpeechInput(rec Recognizer, perm PermissionChecker, onFinal func(text string), logger *slog.Logger) *SpeechInput {
	return &SpeechInput{rec: rec, perm: perm, onFinal: onFinal, logger: logger}
}

// Start checks the microphone permission on first use and opens the
// session. Starting while already listening is a guarded no-op; there is
// never more than one session.
func (s *SpeechInput) Start(ctx context.Context) error {
	if s.rec == nil {
		return domain.ErrProviderUnsupported
	}

	s.mu.Lock()
	if s.listening {
		s.mu.Unlock()
		return nil
	}
	granted := s.granted
	s.mu.Unlock()

	if !granted {
		if err := s.perm.RequestMicrophone(ctx); err != nil {
			s.logger.Warn("microphone permission denied", "error", err)
			return domain.ErrPermissionDenied
		}
		s.mu.Lock()
		s.granted = true
		s.mu.Unlock()
	}

	events, err := s.rec.Start(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listening = true
	s.interim = ""
	s.mu.Unlock()

	go s.consume(events)
	return nil
}

// Stop aborts the provider session and clears the interim buffer.
func (s *SpeechInput) Stop() {
	if s.rec == nil {
		return
	}
	s.rec.Stop()
	s.toIdle()
}

func (s *SpeechInput) consume(events <-chan RecognitionEvent) {
	for ev := range events {
		if ev.Err != nil {
			s.logger.Warn("recognition error", "error", ev.Err)
			s.toIdle()
			return
		}
		if ev.End {
			s.toIdle()
			return
		}

		var interim, final strings.Builder
		for _, res := range ev.Results {
			if res.Final {
				final.WriteString(res.Text)
			} else {
				interim.WriteString(res.Text)
			}
		}

		finalText := final.String()
		s.mu.Lock()
		// Interim text replaces the preview, it never accumulates.
		s.interim = interim.String()
		if strings.TrimSpace(finalText) != "" {
			s.interim = ""
			s.lastFinal = finalText
		}
		s.mu.Unlock()

		if strings.TrimSpace(finalText) != "" {
			s.onFinal(finalText)
		}
	}
	s.toIdle()
}

func (s *SpeechInput) toIdle() {
	s.mu.Lock()
	s.listening = false
	s.interim = ""
	s.mu.Unlock()
}

func (s *SpeechInput) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Interim is the live transcript preview for display.
func (s *SpeechInput) Interim() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interim
}

func (s *SpeechInput) LastFinal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFinal
}
