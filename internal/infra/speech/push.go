package speech

import (
	"context"
	"sync"

	"jarvis/internal/application"
)

// PushRecognizer is a recognition provider fed from outside: the browser
// client runs the actual recognition engine and posts interim and final
// results through the gateway. Results arriving while no session is open
// are dropped.
type PushRecognizer struct {
	mu     sync.Mutex
	events chan application.RecognitionEvent
	open   bool
}

func NewPushRecognizer() *PushRecognizer { return &PushRecognizer{} }

func (p *PushRecognizer) Start(_ context.Context) (<-chan application.RecognitionEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		return p.events, nil
	}
	p.events = make(chan application.RecognitionEvent, 16)
	p.open = true
	return p.events, nil
}

func (p *PushRecognizer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return
	}
	p.open = false
	close(p.events)
}

// Push delivers one recognition result into the open session.
func (p *PushRecognizer) Push(text string, final bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return
	}
	ev := application.RecognitionEvent{
		Results: []application.RecognitionResult{{Text: text, Final: final}},
	}
	select {
	case p.events <- ev:
	default:
		// Queue full; recognition results are best-effort.
	}
}

// Fail injects a provider error and ends the session.
func (p *PushRecognizer) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return
	}
	select {
	case p.events <- application.RecognitionEvent{Err: err}:
	default:
	}
	p.open = false
	close(p.events)
}

// BrowserPermission reports the microphone permission as already resolved:
// the remote client only posts transcripts after its own permission prompt
// succeeded.
type BrowserPermission struct{}

func (BrowserPermission) RequestMicrophone(context.Context) error { return nil }
