//go:build !portaudio
// +build !portaudio

package speech

// NullPlayer is the silent fallback when the binary is built without the
// portaudio tag. Playback completes immediately.
type NullPlayer struct{}

func NewPlayer(sampleRate int) (*NullPlayer, error) {
	return &NullPlayer{}, nil
}

func (*NullPlayer) Close() error { return nil }

func (*NullPlayer) Play(_ []byte) (<-chan struct{}, func(), error) {
	done := make(chan struct{})
	close(done)
	return done, func() {}, nil
}
