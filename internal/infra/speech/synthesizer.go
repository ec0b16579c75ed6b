package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"jarvis/internal/application"
	"jarvis/internal/infra"
)

// Player renders synthesized audio. The portaudio implementation sits
// behind the portaudio build tag; the default build plays nothing and
// completes immediately.
type Player interface {
	Play(audio []byte) (done <-chan struct{}, cancel func(), err error)
}

// HTTPSynthesizer is a speech synthesis provider reached over HTTP: it
// lists voices from GET /voices and posts text to POST /synthesize,
// playing the returned audio through a Player.
type HTTPSynthesizer struct {
	baseURL    string
	httpClient *http.Client
	player     Player
	logger     *slog.Logger

	mu     sync.Mutex
	voices []application.Voice
}

func NewHTTPSynthesizer(baseURL string, player Player, logger *slog.Logger) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		player:     player,
		logger:     logger,
	}
}

// Voices returns the provider's voice list. The service may report an
// empty list right after startup; nothing is cached until it has voices,
// so re-querying picks them up once they exist.
func (s *HTTPSynthesizer) Voices() ([]application.Voice, error) {
	s.mu.Lock()
	cached := s.voices
	s.mu.Unlock()
	if len(cached) > 0 {
		return cached, nil
	}
	return s.refreshVoices()
}

func (s *HTTPSynthesizer) refreshVoices() ([]application.Voice, error) {
	var voices []application.Voice

	retryErr := infra.DefaultBackoff().Do(context.Background(), func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/voices")
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("voices error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("voices error %d: %s", resp.StatusCode, string(respBody))
		}

		voices = voices[:0]
		if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
			return fmt.Errorf("decoding voices: %w", err)
		}
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	s.mu.Lock()
	s.voices = voices
	s.mu.Unlock()
	return voices, nil
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// Speak synthesizes the text and starts playback.
func (s *HTTPSynthesizer) Speak(text string, voice application.Voice) (application.Utterance, error) {
	bodyBytes, err := json.Marshal(synthesizeRequest{Text: text, Voice: voice.ID})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var audio []byte
	retryErr := infra.DefaultBackoff().Do(context.Background(), func() error {
		resp, err := s.httpClient.Post(s.baseURL+"/synthesize", "application/json", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("synthesize error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("synthesize error %d: %s", resp.StatusCode, string(respBody))
		}

		audio, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	done, cancel, err := s.player.Play(audio)
	if err != nil {
		return nil, fmt.Errorf("starting playback: %w", err)
	}
	return &utterance{done: done, cancel: cancel}, nil
}

type utterance struct {
	done   <-chan struct{}
	cancel func()
	once   sync.Once
}

func (u *utterance) Done() <-chan struct{} { return u.done }

func (u *utterance) Cancel() { u.once.Do(u.cancel) }
