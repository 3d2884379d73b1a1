// Package chime plays a short confirmation tone on the default speaker.
package chime

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

var (
	initOnce sync.Once
	initErr  error
)

// Tone returns a sine streamer of the given frequency and length with a
// linear fade out so it ends without a click.
func Tone(freq float64, length time.Duration) beep.Streamer {
	total := sampleRate.N(length)
	step := 2 * math.Pi * freq / float64(sampleRate)
	pos := 0

	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			gain := 0.4 * float64(total-pos) / float64(total)
			v := gain * math.Sin(step*float64(pos))
			samples[i][0], samples[i][1] = v, v
			pos++
			n++
		}
		return n, true
	})
}

// Play blocks until a two-note chime has played.
func Play() error {
	initOnce.Do(func() {
		initErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	if initErr != nil {
		return fmt.Errorf("init speaker: %w", initErr)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(
		Tone(880, 120*time.Millisecond),
		Tone(1320, 180*time.Millisecond),
		beep.Callback(func() { close(done) }),
	))
	<-done
	return nil
}
