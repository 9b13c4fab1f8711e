package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioCapturer implements audio capture using PortAudio
type PortAudioCapturer struct {
	isCapturing   bool
	stream        *portaudio.Stream
	frame         *Frame
	frameSize     int
	sampleRate    int
	channels      int
	bufferMutex   sync.Mutex
	amplification float32 // Audio signal amplification factor
}

// NewPortAudioCapturer creates a new audio capturer using PortAudio
func NewPortAudioCapturer(frameSize, sampleRate, channels int) (*PortAudioCapturer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	return &PortAudioCapturer{
		frame: &Frame{
			Samples:    make([]float32, 0, frameSize),
			SampleRate: sampleRate,
		},
		frameSize:     frameSize,
		sampleRate:    sampleRate,
		channels:      channels,
		amplification: 1.0,
	}, nil
}

// Start begins audio capture
func (c *PortAudioCapturer) Start() error {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()
	if c.isCapturing {
		return ErrAlreadyCapturing
	}

	// Open default input stream
	stream, err := portaudio.OpenDefaultStream(
		c.channels, // input channels
		0,          // output channels
		float64(c.sampleRate),
		c.frameSize, // frames per buffer
		c.processAudio,
	)
	if err != nil {
		return err
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}

	c.stream = stream
	c.isCapturing = true
	return nil
}

// Stop ends audio capture. The PortAudio library stays initialised so the
// capturer can be started again; call Close when done.
func (c *PortAudioCapturer) Stop() error {
	c.bufferMutex.Lock()
	stream := c.stream
	if !c.isCapturing {
		c.bufferMutex.Unlock()
		return ErrNotCapturing
	}
	c.isCapturing = false
	c.stream = nil
	c.frame.Samples = c.frame.Samples[:0]
	c.bufferMutex.Unlock()

	// Stop waits for the callback, which takes the mutex
	if err := stream.Stop(); err != nil {
		return err
	}
	return stream.Close()
}

// Close stops capture if needed and terminates PortAudio
func (c *PortAudioCapturer) Close() error {
	if c.IsCapturing() {
		if err := c.Stop(); err != nil {
			return err
		}
	}
	return portaudio.Terminate()
}

// processAudio is the callback function for audio processing
func (c *PortAudioCapturer) processAudio(in, _ []float32) {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	c.frame.Samples = downmix(c.frame.Samples[:0], in, c.channels, c.amplification)
}

// downmix averages interleaved channels into dst and applies gain
func downmix(dst, in []float32, channels int, gain float32) []float32 {
	if channels < 1 {
		channels = 1
	}
	for i := 0; i+channels <= len(in); i += channels {
		sum := float32(0)
		for ch := 0; ch < channels; ch++ {
			sum += in[i+ch]
		}
		dst = append(dst, (sum/float32(channels))*gain)
	}
	return dst
}

// GetBuffer returns the current audio buffer
func (c *PortAudioCapturer) GetBuffer() (*Frame, error) {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	if !c.isCapturing {
		return nil, ErrNotCapturing
	}

	frameCopy := &Frame{
		Samples:    make([]float32, len(c.frame.Samples)),
		SampleRate: c.frame.SampleRate,
	}
	copy(frameCopy.Samples, c.frame.Samples)

	return frameCopy, nil
}

// IsCapturing returns true if currently capturing audio
func (c *PortAudioCapturer) IsCapturing() bool {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()
	return c.isCapturing
}

// SetAmplification sets the audio amplification factor
func (c *PortAudioCapturer) SetAmplification(factor float32) {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	// Ensure amplification is positive
	if factor < 0.1 {
		factor = 0.1
	}

	c.amplification = factor
}
