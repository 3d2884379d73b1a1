// Package mic captures the default input device with PortAudio.
package mic

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/zhouzirui/violet/backend/internal/ambient/clap"
)

// Source reads mono 16-bit frames from the default microphone.
type Source struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buf    []int16
	closed bool
}

// Open initialises PortAudio and starts a capture stream.
func Open(sampleRate, frameSize int) (*Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("init portaudio: %w", err)
	}

	buf := make([]int16, frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(buf), buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	return &Source{stream: stream, buf: buf}, nil
}

// Opener adapts Open for clap.New.
func Opener(sampleRate, frameSize int) clap.Opener {
	return func() (clap.Source, error) {
		return Open(sampleRate, frameSize)
	}
}

// Read implements clap.Source. An input overflow is not an error; the frame
// is still returned.
func (s *Source) Read(frame []int16) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, clap.ErrSourceClosed
	}
	if err := s.stream.Read(); err != nil && err != portaudio.InputOverflowed {
		return 0, fmt.Errorf("read input stream: %w", err)
	}
	return copy(frame, s.buf), nil
}

// Close stops the stream and releases PortAudio. It waits for an in-flight
// Read, which lasts at most one frame.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	stopErr := s.stream.Stop()
	closeErr := s.stream.Close()
	termErr := portaudio.Terminate()

	switch {
	case stopErr != nil:
		return fmt.Errorf("stop input stream: %w", stopErr)
	case closeErr != nil:
		return fmt.Errorf("close input stream: %w", closeErr)
	case termErr != nil:
		return fmt.Errorf("terminate portaudio: %w", termErr)
	}
	return nil
}
