// Package clap recognises a three-clap pattern in a live audio stream and
// fires an action once per pattern.
//
// A pulse is a frame whose peak amplitude exceeds the threshold, at least the
// debounce interval after the previous pulse. A gap longer than the window
// starts a fresh count. The third pulse triggers; the count then restarts, so
// a fourth clap right after never triggers twice.
package clap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/zhouzirui/violet/backend/internal/config"
	"github.com/zhouzirui/violet/backend/internal/service/events"
)

// Pulses is the number of claps that make a pattern.
const Pulses = 3

// Config holds the detector's thresholds and timings.
type Config struct {
	Threshold   int
	Debounce    time.Duration
	Window      time.Duration
	Settle      time.Duration
	JoinTimeout time.Duration
	FrameSize   int
}

// ConfigFrom converts the service configuration.
func ConfigFrom(c config.ClapConfig) Config {
	return Config{
		Threshold:   c.Threshold,
		Debounce:    c.Debounce,
		Window:      c.Window,
		Settle:      c.Settle,
		JoinTimeout: c.JoinTimeout,
		FrameSize:   c.FrameSize,
	}
}

// Publisher receives trigger events.
type Publisher interface {
	Publish(ev events.Event) int
}

// Opener opens the audio source when the detector starts.
type Opener func() (Source, error)

// Action is the side effect run after a pattern is recognised.
type Action func(ctx context.Context)

// Option customises a Detector.
type Option func(*Detector)

// WithClock replaces time.Now for pulse timestamps.
func WithClock(now func() time.Time) Option { return func(d *Detector) { d.now = now } }

// WithChime plays a sound as soon as a pattern is recognised.
func WithChime(chime func()) Option { return func(d *Detector) { d.chime = chime } }

// Detector is safe for concurrent use. Start and Stop may be called any
// number of times. The detector also stops on its own when the context given
// to Start is cancelled or the source ends, and can then be started again.
type Detector struct {
	cfg     Config
	open    Opener
	publish Publisher
	action  Action
	chime   func()
	now     func() time.Time

	mu     sync.Mutex
	pulses []time.Time

	life     sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	source   Source
	triggers chan time.Time
}

// New creates a stopped detector. publish and action may be nil.
func New(cfg Config, open Opener, publish Publisher, action Action, opts ...Option) *Detector {
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = 1024
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = time.Second
	}
	d := &Detector{
		cfg:     cfg,
		open:    open,
		publish: publish,
		action:  action,
		now:     time.Now,
		pulses:  make([]time.Time, 0, Pulses),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Observe feeds one frame peak taken at the given instant and reports whether
// it completed a pattern.
func (d *Detector) Observe(peak int, at time.Time) bool {
	if peak <= d.cfg.Threshold {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if n := len(d.pulses); n > 0 {
		gap := at.Sub(d.pulses[n-1])
		if gap <= d.cfg.Debounce {
			return false
		}
		if gap > d.cfg.Window {
			slog.Debug("clap count reset", "gap", gap)
			d.pulses = d.pulses[:0]
		}
	}

	d.pulses = append(d.pulses, at)
	slog.Debug("clap detected", "count", len(d.pulses), "peak", peak)

	if len(d.pulses) == Pulses {
		d.pulses = d.pulses[:0]
		return true
	}
	return false
}

// Count returns the pulses recorded toward the current pattern.
func (d *Detector) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pulses)
}

// Running reports whether the detector is started.
func (d *Detector) Running() bool {
	d.life.Lock()
	defer d.life.Unlock()
	return d.running
}

// Start opens the source and begins listening in the background.
func (d *Detector) Start(ctx context.Context) error {
	d.life.Lock()
	defer d.life.Unlock()

	if d.running {
		return nil
	}

	src, err := d.open()
	if err != nil {
		return fmt.Errorf("open audio source: %w", err)
	}

	d.mu.Lock()
	d.pulses = d.pulses[:0]
	d.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.source = src
	d.done = make(chan struct{})
	d.triggers = make(chan time.Time, 1)
	d.running = true

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.capture(ctx, src, d.triggers)
	}()
	go func() {
		defer wg.Done()
		d.work(ctx, d.triggers)
	}()
	go func(done chan struct{}) {
		wg.Wait()
		close(done)
		d.exited(done)
	}(d.done)

	slog.Info("clap detector started", "threshold", d.cfg.Threshold)
	return nil
}

// Stop cancels listening, closes the audio source and waits up to the join
// timeout for the background goroutines.
func (d *Detector) Stop() {
	d.life.Lock()
	if !d.running {
		d.life.Unlock()
		return
	}
	d.running = false
	cancel, done, src := d.cancel, d.done, d.source
	d.life.Unlock()

	cancel()
	// Closing unblocks a capture goroutine waiting in Read.
	if err := src.Close(); err != nil {
		slog.Warn("close audio source", "err", err)
	}

	select {
	case <-done:
	case <-time.After(d.cfg.JoinTimeout):
		slog.Warn("clap detector did not stop in time", "timeout", d.cfg.JoinTimeout)
	}
	slog.Info("clap detector stopped")
}

// exited marks the detector stopped when its goroutines end without Stop,
// after the parent context is cancelled or the source runs dry.
func (d *Detector) exited(done chan struct{}) {
	d.life.Lock()
	defer d.life.Unlock()

	if !d.running || d.done != done {
		return
	}
	d.running = false
	d.cancel()
	slog.Info("clap detector exited")
}

func (d *Detector) capture(ctx context.Context, src Source, triggers chan<- time.Time) {
	defer close(triggers)
	defer func() {
		if err := src.Close(); err != nil {
			slog.Warn("close audio source", "err", err)
		}
	}()

	frame := make([]int16, d.cfg.FrameSize)
	for ctx.Err() == nil {
		n, err := src.Read(frame)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, ErrSourceClosed) {
				slog.Error("audio capture failed", "err", err)
			}
			return
		}

		at := d.now()
		if !d.Observe(Peak(frame[:n]), at) {
			continue
		}

		select {
		case triggers <- at:
		default:
			slog.Warn("clap pattern ignored, previous trigger still running")
		}
	}
}

func (d *Detector) work(ctx context.Context, triggers <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-triggers:
			if !ok {
				return
			}
			d.fire(ctx)
		}
	}
}

func (d *Detector) fire(ctx context.Context) {
	slog.Info("clap pattern recognised")
	if d.chime != nil {
		d.chime()
	}
	if d.publish != nil {
		d.publish.Publish(events.New(events.ClapDetected, "Three claps detected"))
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(d.cfg.Settle):
	}

	if d.action != nil {
		d.action(ctx)
	}
}

// Peak returns the largest absolute sample value.
func Peak(frame []int16) int {
	peak := 0
	for _, s := range frame {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// Replay runs src through a fresh detector using sample positions as the
// clock and returns the offsets at which patterns completed. No events are
// published and no action runs.
func Replay(cfg Config, src Source, sampleRate int) ([]time.Duration, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	d := New(cfg, nil, nil, nil)

	var (
		start    time.Time
		consumed int
		hits     []time.Duration
	)
	frame := make([]int16, d.cfg.FrameSize)
	for {
		n, err := src.Read(frame)
		if errors.Is(err, io.EOF) {
			return hits, nil
		}
		if err != nil {
			return hits, err
		}

		offset := time.Duration(consumed) * time.Second / time.Duration(sampleRate)
		if d.Observe(Peak(frame[:n]), start.Add(offset)) {
			hits = append(hits, offset)
		}
		consumed += n
	}
}
