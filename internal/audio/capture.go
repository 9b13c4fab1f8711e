package audio

import (
	"errors"
	"sync"

	"github.com/gopxl/beep"
)

// Errors
var (
	ErrAlreadyCapturing = errors.New("audio capture already started")
	ErrNotCapturing     = errors.New("audio capture not started")
)

// Frame is one window of mono samples in [-1, 1]
type Frame struct {
	Samples    []float32
	SampleRate int
}

// Capturer defines the interface for audio capture
type Capturer interface {
	// Start begins audio capture
	Start() error

	// Stop ends audio capture
	Stop() error

	// GetBuffer returns a copy of the most recent frame
	GetBuffer() (*Frame, error)

	// IsCapturing returns true if currently capturing audio
	IsCapturing() bool
}

// ToneCapturer is a synthetic capturer that produces a steady sine. A
// frequency of 0 produces silence.
type ToneCapturer struct {
	mu          sync.Mutex
	isCapturing bool
	frameSize   int
	rate        beep.SampleRate
	amplitude   float64
	source      beep.Streamer
	scratch     [][2]float64
}

// NewToneCapturer creates a capturer emitting freq Hz at the given rate
func NewToneCapturer(freq float64, frameSize, sampleRate int) *ToneCapturer {
	c := &ToneCapturer{
		frameSize: frameSize,
		rate:      beep.SampleRate(sampleRate),
		amplitude: 0.5,
		scratch:   make([][2]float64, frameSize),
	}
	c.source = c.newSource(freq)
	return c
}

func (c *ToneCapturer) newSource(freq float64) beep.Streamer {
	if freq <= 0 {
		return beep.Silence(-1)
	}
	return NewOscillator(freq, c.amplitude, c.rate)
}

// SetFrequency retunes the generated tone
func (c *ToneCapturer) SetFrequency(freq float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = c.newSource(freq)
}

// Start begins audio capture
func (c *ToneCapturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isCapturing {
		return ErrAlreadyCapturing
	}
	c.isCapturing = true
	return nil
}

// Stop ends audio capture
func (c *ToneCapturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCapturing {
		return ErrNotCapturing
	}
	c.isCapturing = false
	return nil
}

// GetBuffer returns the next frame of the tone
func (c *ToneCapturer) GetBuffer() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCapturing {
		return nil, ErrNotCapturing
	}

	n, _ := c.source.Stream(c.scratch)
	frame := &Frame{
		Samples:    make([]float32, c.frameSize),
		SampleRate: int(c.rate),
	}
	for i := 0; i < n; i++ {
		frame.Samples[i] = float32(c.scratch[i][0])
	}
	return frame, nil
}

// IsCapturing returns true if currently capturing audio
func (c *ToneCapturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCapturing
}
