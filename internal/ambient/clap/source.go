package clap

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// ErrSourceClosed is returned by Read after Close.
var ErrSourceClosed = errors.New("audio source closed")

// Source yields mono 16-bit frames. Read fills frame and returns the number
// of samples written; io.EOF ends a finite stream. Close must be safe to call
// more than once and must unblock a pending Read.
type Source interface {
	Read(frame []int16) (int, error)
	Close() error
}

// SampleSource replays decoded samples.
type SampleSource struct {
	samples    []int16
	sampleRate int
	pace       bool

	mu     sync.Mutex
	pos    int
	closed chan struct{}
	once   sync.Once
}

// NewSampleSource wraps samples. With pace set, each Read waits the frame's
// real duration so wall-clock timing matches the recording.
func NewSampleSource(samples []int16, sampleRate int, pace bool) *SampleSource {
	return &SampleSource{
		samples:    samples,
		sampleRate: sampleRate,
		pace:       pace,
		closed:     make(chan struct{}),
	}
}

// SampleRate returns the rate of the decoded samples.
func (s *SampleSource) SampleRate() int { return s.sampleRate }

// Read implements Source.
func (s *SampleSource) Read(frame []int16) (int, error) {
	select {
	case <-s.closed:
		return 0, ErrSourceClosed
	default:
	}

	s.mu.Lock()
	if s.pos >= len(s.samples) {
		s.mu.Unlock()
		return 0, io.EOF
	}
	n := copy(frame, s.samples[s.pos:])
	s.pos += n
	s.mu.Unlock()

	if s.pace && s.sampleRate > 0 {
		select {
		case <-s.closed:
			return 0, ErrSourceClosed
		case <-time.After(time.Duration(n) * time.Second / time.Duration(s.sampleRate)):
		}
	}
	return n, nil
}

// Close implements Source.
func (s *SampleSource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// OpenFile decodes a WAV, MP3 or Ogg Vorbis file into a mono SampleSource at
// the file's own sample rate.
func OpenFile(path string, pace bool) (*SampleSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		samples []int16
		rate    int
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		samples, rate, err = decodeWAV(f)
	case ".mp3":
		samples, rate, err = decodeMP3(f)
	case ".ogg", ".oga":
		samples, rate, err = decodeVorbis(f)
	default:
		br := bufio.NewReader(f)
		magic, _ := br.Peek(4)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		switch string(magic) {
		case "RIFF":
			samples, rate, err = decodeWAV(f)
		case "OggS":
			samples, rate, err = decodeVorbis(f)
		default:
			return nil, fmt.Errorf("unsupported audio format: %s (supported: wav/mp3/ogg-vorbis)", path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return NewSampleSource(samples, rate, pace), nil
}

func decodeWAV(r io.ReadSeeker) ([]int16, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("empty wav")
	}

	channels, rate := 1, 44100
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}
	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}

	shift := depth - 16
	mono := make([]int16, len(buf.Data)/channels)
	for i := range mono {
		sum := 0
		for c := 0; c < channels; c++ {
			v := buf.Data[i*channels+c]
			switch {
			case shift > 0:
				v >>= shift
			case shift < 0:
				v <<= -shift
			}
			sum += v
		}
		mono[i] = clamp16(sum / channels)
	}
	return mono, rate, nil
}

func decodeMP3(r io.Reader) ([]int16, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, 0, err
	}

	stereo := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &stereo); err != nil {
		return nil, 0, err
	}
	mono := make([]int16, len(stereo)/2)
	for i := range mono {
		mono[i] = clamp16((int(stereo[2*i]) + int(stereo[2*i+1])) / 2)
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	return mono, rate, nil
}

func decodeVorbis(r io.Reader) ([]int16, int, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, 0, errors.New("invalid ogg/vorbis stream")
	}

	mono := make([]int16, len(pcm)/format.Channels)
	for i := range mono {
		var sum float64
		for c := 0; c < format.Channels; c++ {
			sum += float64(pcm[i*format.Channels+c])
		}
		mono[i] = clamp16(int(math.Round(sum / float64(format.Channels) * 32767)))
	}
	return mono, format.SampleRate, nil
}

func clamp16(v int) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}
