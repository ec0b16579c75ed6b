//go:build portaudio
// +build portaudio

package speech

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioPlayer plays 16-bit little-endian mono PCM through the default
// output device.
type PortAudioPlayer struct {
	sampleRate int
}

func NewPlayer(sampleRate int) (*PortAudioPlayer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	return &PortAudioPlayer{sampleRate: sampleRate}, nil
}

func (p *PortAudioPlayer) Close() error {
	return portaudio.Terminate()
}

func (p *PortAudioPlayer) Play(audio []byte) (<-chan struct{}, func(), error) {
	samples := make([]int16, len(audio)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(audio[i*2:]))
	}

	framesPerBuffer := 1024
	buffer := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(p.sampleRate), framesPerBuffer, buffer)
	if err != nil {
		return nil, nil, fmt.Errorf("opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, nil, fmt.Errorf("starting stream: %w", err)
	}

	done := make(chan struct{})
	stop := make(chan struct{})
	var stopOnce sync.Once
	cancel := func() { stopOnce.Do(func() { close(stop) }) }

	go func() {
		defer close(done)
		defer stream.Close()
		defer stream.Stop()

		for off := 0; off < len(samples); off += framesPerBuffer {
			select {
			case <-stop:
				return
			default:
			}

			n := copy(buffer, samples[off:])
			for i := n; i < framesPerBuffer; i++ {
				buffer[i] = 0
			}
			if err := stream.Write(); err != nil {
				return
			}
		}
	}()

	return done, cancel, nil
}
