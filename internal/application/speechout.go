package application

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Voice is one synthesis voice offered by the provider.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// Utterance is one in-flight synthesis playback.
type Utterance interface {
	// Done is closed when playback completes or fails.
	Done() <-chan struct{}
	Cancel()
}

// Synthesizer is the speech synthesis provider. The voice list may be
// empty right after startup and fill in later; callers re-query.
type Synthesizer interface {
	Voices() ([]Voice, error)
	// Speak starts playback with the given voice; a zero Voice selects
	// the provider default.
	Speak(text string, voice Voice) (Utterance, error)
}

// curatedKeywords mark vendor names that tend to ship the better voices.
var curatedKeywords = []string{"google", "microsoft", "amazon", "azure", "voice", "synth"}

const curatedLimit = 5

// SpeechOutput serializes access to the single speech channel: at most one
// utterance is audible at any instant, and a new Speak preempts the one in
// flight rather than queueing behind it.
type SpeechOutput struct {
	synth  Synthesizer
	logger *slog.Logger

	mu       sync.Mutex
	muted    bool
	speaking bool
	voiceID  string
	current  Utterance
	gen      int
}

func NewSpeechOutput(synth Synthesizer, logger *slog.Logger) *SpeechOutput {
	return &SpeechOutput{synth: synth, logger: logger}
}

// Speak starts the utterance, preempting any current one. When muted it
// does nothing at all. Synthesis runs outside the controller lock, so state
// reads and mute/voice changes never wait on the provider.
func (s *SpeechOutput) Speak(text string) {
	s.mu.Lock()
	if s.muted {
		s.mu.Unlock()
		return
	}
	if s.current != nil {
		s.current.Cancel()
		s.current = nil
	}
	s.gen++
	gen := s.gen
	voiceID := s.voiceID
	s.mu.Unlock()

	voice := s.resolveVoice(voiceID)
	utt, err := s.synth.Speak(text, voice)

	s.mu.Lock()
	if gen != s.gen {
		// Preempted while synthesis was in flight; the newer utterance
		// owns the channel now.
		s.mu.Unlock()
		if err == nil {
			utt.Cancel()
		}
		return
	}
	if err != nil {
		s.speaking = false
		s.mu.Unlock()
		s.logger.Warn("speech synthesis failed", "error", err)
		return
	}
	s.current = utt
	s.speaking = true
	s.mu.Unlock()

	go func() {
		<-utt.Done()
		s.mu.Lock()
		// A preempted utterance's completion must not clear the flag
		// for its successor.
		if s.gen == gen {
			s.speaking = false
			s.current = nil
		}
		s.mu.Unlock()
	}()
}

// resolveVoice maps the selected voice id to a provider voice, falling back
// to the provider default when it no longer resolves.
func (s *SpeechOutput) resolveVoice(voiceID string) Voice {
	if voiceID == "" {
		return Voice{}
	}
	voices, err := s.synth.Voices()
	if err != nil {
		return Voice{}
	}
	for _, v := range voices {
		if v.ID == voiceID || v.Name == voiceID {
			return v
		}
	}
	return Voice{}
}

// SetMuted updates the flag. Speech already in flight keeps playing; it is
// only cancelled by the next Speak.
func (s *SpeechOutput) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

func (s *SpeechOutput) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

func (s *SpeechOutput) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

func (s *SpeechOutput) SetVoice(id string) {
	s.mu.Lock()
	s.voiceID = id
	s.mu.Unlock()
}

func (s *SpeechOutput) VoiceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceID
}

// CuratedVoices ranks the provider's voices for display: English-tagged
// only, scored by vendor keywords with a bonus for exact en-US, top five.
// When no English voices exist it falls back to the first five unfiltered.
func (s *SpeechOutput) CuratedVoices() []Voice {
	voices, err := s.synth.Voices()
	if err != nil {
		s.logger.Warn("listing voices failed", "error", err)
		return nil
	}
	if len(voices) == 0 {
		return nil
	}

	type scoredVoice struct {
		voice Voice
		score int
	}
	var scored []scoredVoice
	for _, v := range voices {
		if !strings.HasPrefix(strings.ToLower(v.Lang), "en") {
			continue
		}
		name := strings.ToLower(v.Name)
		score := 0
		for _, k := range curatedKeywords {
			if strings.Contains(name, k) {
				score += 2
			}
		}
		if strings.EqualFold(v.Lang, "en-US") {
			score++
		}
		scored = append(scored, scoredVoice{voice: v, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	curated := make([]Voice, 0, curatedLimit)
	for _, sv := range scored {
		if len(curated) == curatedLimit {
			break
		}
		curated = append(curated, sv.voice)
	}
	if len(curated) > 0 {
		return curated
	}

	if len(voices) > curatedLimit {
		voices = voices[:curatedLimit]
	}
	return voices
}
