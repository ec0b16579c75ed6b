package application_test

import (
	"sync"
	"testing"
	"time"

	"jarvis/internal/application"
)

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

type fakeUtterance struct {
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	cancelled bool
}

func newFakeUtterance() *fakeUtterance {
	return &fakeUtterance{done: make(chan struct{})}
}

func (u *fakeUtterance) Done() <-chan struct{} { return u.done }

func (u *fakeUtterance) Cancel() {
	u.mu.Lock()
	u.cancelled = true
	u.mu.Unlock()
	u.once.Do(func() { close(u.done) })
}

func (u *fakeUtterance) finish() {
	u.once.Do(func() { close(u.done) })
}

func (u *fakeUtterance) wasCancelled() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.cancelled
}

type speakCall struct {
	text  string
	voice application.Voice
}

type fakeSynth struct {
	mu         sync.Mutex
	voices     []application.Voice
	calls      []speakCall
	utterances []*fakeUtterance
}

func (s *fakeSynth) Voices() ([]application.Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voices, nil
}

func (s *fakeSynth) setVoices(voices []application.Voice) {
	s.mu.Lock()
	s.voices = voices
	s.mu.Unlock()
}

func (s *fakeSynth) Speak(text string, voice application.Voice) (application.Utterance, error) {
	u := newFakeUtterance()
	s.mu.Lock()
	s.calls = append(s.calls, speakCall{text: text, voice: voice})
	s.utterances = append(s.utterances, u)
	s.mu.Unlock()
	return u, nil
}

func (s *fakeSynth) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSynth) call(i int) speakCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

func (s *fakeSynth) utterance(i int) *fakeUtterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.utterances[i]
}

// blockingSynth holds every Speak call until released, standing in for a
// provider with a slow synthesis round-trip.
type blockingSynth struct {
	fakeSynth
	entered chan struct{}
	release chan struct{}
}

func newBlockingSynth() *blockingSynth {
	return &blockingSynth{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *blockingSynth) Speak(text string, voice application.Voice) (application.Utterance, error) {
	close(s.entered)
	<-s.release
	return s.fakeSynth.Speak(text, voice)
}

func TestSpeechOutput_StateAvailableDuringSynthesis(t *testing.T) {
	synth := newBlockingSynth()
	out := application.NewSpeechOutput(synth, testLogger())

	go out.Speak("hello")
	<-synth.entered

	stateRead := make(chan struct{})
	go func() {
		out.Speaking()
		out.Muted()
		out.SetVoice("v1")
		close(stateRead)
	}()
	select {
	case <-stateRead:
	case <-time.After(time.Second):
		t.Fatal("state accessors blocked while synthesis was in flight")
	}

	close(synth.release)
	waitFor(t, func() bool { return out.Speaking() }, "speaking after synthesis completes")
	synth.utterance(0).finish()
	waitFor(t, func() bool { return !out.Speaking() }, "speaking to clear")
}

func TestSpeechOutput_MutedIsNoop(t *testing.T) {
	synth := &fakeSynth{}
	out := application.NewSpeechOutput(synth, testLogger())

	out.SetMuted(true)
	out.Speak("hello")

	if got := synth.callCount(); got != 0 {
		t.Errorf("speak calls while muted: got %d, want 0", got)
	}
	if out.Speaking() {
		t.Error("speaking should stay false while muted")
	}
}

func TestSpeechOutput_PreemptsInFlight(t *testing.T) {
	synth := &fakeSynth{}
	out := application.NewSpeechOutput(synth, testLogger())

	out.Speak("first")
	out.Speak("second")

	if got := synth.callCount(); got != 2 {
		t.Fatalf("speak calls: got %d, want 2", got)
	}
	if !synth.utterance(0).wasCancelled() {
		t.Error("first utterance should have been preempted")
	}
	if !out.Speaking() {
		t.Error("speaking should be true while the second utterance plays")
	}

	// The preempted utterance's completion must not clear the flag.
	time.Sleep(50 * time.Millisecond)
	if !out.Speaking() {
		t.Error("speaking flipped false from the preempted utterance")
	}

	synth.utterance(1).finish()
	waitFor(t, func() bool { return !out.Speaking() }, "speaking to clear")
}

func TestSpeechOutput_NaturalCompletion(t *testing.T) {
	synth := &fakeSynth{}
	out := application.NewSpeechOutput(synth, testLogger())

	out.Speak("hello")
	if !out.Speaking() {
		t.Fatal("speaking should be true during playback")
	}

	synth.utterance(0).finish()
	waitFor(t, func() bool { return !out.Speaking() }, "speaking to clear")
}

func TestSpeechOutput_VoiceSelection(t *testing.T) {
	synth := &fakeSynth{}
	synth.setVoices([]application.Voice{
		{ID: "v1", Name: "Alpha", Lang: "en-US"},
		{ID: "v2", Name: "Beta", Lang: "en-GB"},
	})
	out := application.NewSpeechOutput(synth, testLogger())

	out.SetVoice("v2")
	out.Speak("hello")
	if got := synth.call(0).voice.ID; got != "v2" {
		t.Errorf("voice: got %q, want v2", got)
	}

	// A stale selection falls back to the provider default.
	out.SetVoice("gone")
	out.Speak("again")
	if got := synth.call(1).voice; got != (application.Voice{}) {
		t.Errorf("voice: got %+v, want provider default", got)
	}
}

func TestSpeechOutput_CuratedVoices(t *testing.T) {
	synth := &fakeSynth{}
	synth.setVoices([]application.Voice{
		{ID: "1", Name: "Google US English", Lang: "en-US"},
		{ID: "2", Name: "Microsoft Zira", Lang: "en-US"},
		{ID: "3", Name: "Plain", Lang: "en-GB"},
		{ID: "4", Name: "Fancy Voice", Lang: "en-AU"},
		{ID: "5", Name: "Voix française", Lang: "fr-FR"},
		{ID: "6", Name: "Basic", Lang: "en"},
		{ID: "7", Name: "Extra", Lang: "en"},
	})
	out := application.NewSpeechOutput(synth, testLogger())

	curated := out.CuratedVoices()
	if len(curated) != 5 {
		t.Fatalf("curated voices: got %d, want 5", len(curated))
	}

	// Keyword-scored voices with the en-US bonus rank first.
	if curated[0].ID != "1" && curated[0].ID != "2" {
		t.Errorf("top voice: got %s", curated[0].ID)
	}
	if curated[2].ID != "4" {
		t.Errorf("third voice: got %s, want 4", curated[2].ID)
	}
	for _, v := range curated {
		if v.ID == "5" {
			t.Error("non-English voice leaked into the curated list")
		}
	}
}

func TestSpeechOutput_CuratedFallsBackUnfiltered(t *testing.T) {
	synth := &fakeSynth{}
	synth.setVoices([]application.Voice{
		{ID: "a", Name: "Uno", Lang: "es-ES"},
		{ID: "b", Name: "Dos", Lang: "es-MX"},
	})
	out := application.NewSpeechOutput(synth, testLogger())

	curated := out.CuratedVoices()
	if len(curated) != 2 {
		t.Fatalf("curated voices: got %d, want 2", len(curated))
	}
	if curated[0].ID != "a" {
		t.Errorf("fallback order: got %s, want a", curated[0].ID)
	}
}

func TestSpeechOutput_VoicesArriveLate(t *testing.T) {
	synth := &fakeSynth{}
	out := application.NewSpeechOutput(synth, testLogger())

	if got := out.CuratedVoices(); len(got) != 0 {
		t.Fatalf("expected no voices at startup, got %d", len(got))
	}

	// The provider populates its list asynchronously after startup.
	synth.setVoices([]application.Voice{{ID: "v1", Name: "Alpha", Lang: "en-US"}})

	curated := out.CuratedVoices()
	if len(curated) != 1 || curated[0].ID != "v1" {
		t.Fatalf("curated voices after refresh: got %+v", curated)
	}
}
