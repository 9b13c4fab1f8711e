package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// oscillator generates an endless sine or square wave
type oscillator struct {
	freq      float64
	amplitude float64
	phase     float64
	rate      beep.SampleRate
	square    bool
}

// NewOscillator creates a sine streamer at freq Hz. It never ends.
func NewOscillator(freq, amplitude float64, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, amplitude: amplitude, rate: rate}
}

// NewSquare creates a square wave streamer at freq Hz. It never ends.
func NewSquare(freq, amplitude float64, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, amplitude: amplitude, rate: rate, square: true}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	step := o.freq / float64(o.rate)
	for i := range samples {
		v := o.amplitude * math.Sin(2*math.Pi*o.phase)
		if o.square {
			v = o.amplitude
			if o.phase >= 0.5 {
				v = -o.amplitude
			}
		}
		samples[i][0] = v
		samples[i][1] = v
		o.phase += step
		o.phase -= math.Floor(o.phase) // Keep in [0, 1)
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// decay fades a stream exponentially from 1 to floor over total samples
type decay struct {
	streamer beep.Streamer
	position int
	total    int
	floor    float64
}

// NewDecay shapes s with an exponential fade lasting d
func NewDecay(s beep.Streamer, d time.Duration, floor float64, rate beep.SampleRate) beep.Streamer {
	return &decay{streamer: s, total: rate.N(d), floor: floor}
}

func (e *decay) Stream(samples [][2]float64) (n int, ok bool) {
	if e.position >= e.total {
		return 0, false
	}
	if rem := e.total - e.position; len(samples) > rem {
		samples = samples[:rem]
	}
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		gain := math.Pow(e.floor, float64(e.position)/float64(e.total))
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.position++
	}
	return n, ok
}

func (e *decay) Err() error { return e.streamer.Err() }

// newVolume scales a stream linearly; 0 or less is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// ReferenceTone builds a decaying sine of the given length, the sound of
// the tuner's "play string" buttons
func ReferenceTone(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return newVolume(NewDecay(NewOscillator(freq, 1, rate), d, 0.1, rate), 0.1)
}

// Click builds a metronome tick: a short high square "wood" click over a
// low sine thump
func Click(rate beep.SampleRate) beep.Streamer {
	wood := NewDecay(NewSquare(2000, 0.15, rate), 30*time.Millisecond, 0.001/0.15, rate)
	thump := NewDecay(NewOscillator(100, 0.2, rate), 50*time.Millisecond, 0.001/0.2, rate)
	return newVolume(beep.Mix(wood, thump), 0.3)
}

// TonePlayer plays reference tones through the default output device
type TonePlayer struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	initialized bool
}

// NewTonePlayer creates a player; the speaker opens on first use
func NewTonePlayer(sampleRate int) *TonePlayer {
	return &TonePlayer{rate: beep.SampleRate(sampleRate)}
}

// Play starts a reference tone, cutting off any tone still sounding
func (p *TonePlayer) Play(freq float64, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.init(); err != nil {
		return err
	}
	speaker.Clear()
	speaker.Play(ReferenceTone(freq, d, p.rate))
	return nil
}

// Click plays one metronome tick
func (p *TonePlayer) Click() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.init(); err != nil {
		return err
	}
	speaker.Play(Click(p.rate))
	return nil
}

func (p *TonePlayer) init() error {
	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	p.initialized = true
	return nil
}

// Close silences the speaker
func (p *TonePlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		speaker.Clear()
	}
}
