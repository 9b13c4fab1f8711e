package pitch

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by Config.Validate
var (
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrInvalidRange     = errors.New("invalid frequency range")
	ErrUnknownProfile   = errors.New("unknown profile")
	ErrUnknownRange     = errors.New("unknown instrument range")
)

// Method selects how the autocorrelation is computed
type Method int

const (
	MethodDirect Method = iota // O(N²) lag sum
	MethodFFT                  // zero-padded FFT correlation
)

func (m Method) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodFFT:
		return "fft"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod converts a method name into a Method
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "direct":
		return MethodDirect, nil
	case "fft":
		return MethodFFT, nil
	}
	return MethodDirect, fmt.Errorf("pitch: unknown method %q", s)
}

// Config holds the detector thresholds. They were tuned by ear per device
// class, so the presets below keep those values as they are.
type Config struct {
	NoiseFloorRMS     float64 // Minimum RMS level for a frame to be analysed
	EdgeTrimThreshold float64 // Amplitude below which a sample counts as a trim point
	MinTrimmedSamples int     // Shortest trimmed window worth correlating
	PeakConfidenceMin float64 // Minimum raw correlation at the chosen lag
	MinFrequencyHz    float64 // Lowest accepted frequency
	MaxFrequencyHz    float64 // Highest accepted frequency
	Method            Method
}

// DefaultConfig returns thresholds suited to a guitar on an average device
func DefaultConfig() Config {
	return Config{
		NoiseFloorRMS:     0.012,
		EdgeTrimThreshold: 0.2,
		MinTrimmedSamples: 80,
		PeakConfidenceMin: 0.1,
		MinFrequencyHz:    70,
		MaxFrequencyHz:    1200,
		Method:            MethodDirect,
	}
}

// Device classes
const (
	ProfileDesktop = "desktop"
	ProfileMobile  = "mobile"
)

// ProfileConfig returns the thresholds for a device class. Mobile
// microphones are quieter, so the gate and confidence floor are lower and
// shorter windows are accepted.
func ProfileConfig(profile string) (Config, error) {
	cfg := DefaultConfig()
	switch profile {
	case "":
	case ProfileDesktop:
		cfg.NoiseFloorRMS = 0.015
		cfg.MinTrimmedSamples = 100
		cfg.PeakConfidenceMin = 0.1
	case ProfileMobile:
		cfg.NoiseFloorRMS = 0.01
		cfg.MinTrimmedSamples = 50
		cfg.PeakConfidenceMin = 0.05
	default:
		return cfg, fmt.Errorf("pitch: %w %q", ErrUnknownProfile, profile)
	}
	return cfg, nil
}

// Range is an instrument's plausible fundamental band
type Range struct {
	Name  string
	MinHz float64
	MaxHz float64
}

// Instrument ranges
var ranges = map[string]Range{
	"guitar":    {Name: "guitar", MinHz: 70, MaxHz: 1200},    // E2 (82 Hz) to around D6
	"bass":      {Name: "bass", MinHz: 30, MaxHz: 400},       // B0 (31 Hz) upward
	"ukulele":   {Name: "ukulele", MinHz: 200, MaxHz: 1000},  // re-entrant G4 C4 E4 A4
	"chromatic": {Name: "chromatic", MinHz: 40, MaxHz: 2000}, // anything musical
}

// LookupRange returns the named instrument range
func LookupRange(name string) (Range, error) {
	r, ok := ranges[name]
	if !ok {
		return Range{}, fmt.Errorf("pitch: %w %q", ErrUnknownRange, name)
	}
	return r, nil
}

// WithRange returns a copy of c limited to r
func (c Config) WithRange(r Range) Config {
	c.MinFrequencyHz = r.MinHz
	c.MaxFrequencyHz = r.MaxHz
	return c
}

// Validate reports every incoherent field
func (c Config) Validate() error {
	var errs []error
	if c.NoiseFloorRMS < 0 {
		errs = append(errs, fmt.Errorf("noise floor %v: %w", c.NoiseFloorRMS, ErrInvalidThreshold))
	}
	if c.EdgeTrimThreshold <= 0 || c.EdgeTrimThreshold > 1 {
		errs = append(errs, fmt.Errorf("edge trim threshold %v: %w", c.EdgeTrimThreshold, ErrInvalidThreshold))
	}
	if c.MinTrimmedSamples < 3 {
		errs = append(errs, fmt.Errorf("min trimmed samples %d: %w", c.MinTrimmedSamples, ErrInvalidThreshold))
	}
	if c.PeakConfidenceMin < 0 {
		errs = append(errs, fmt.Errorf("peak confidence %v: %w", c.PeakConfidenceMin, ErrInvalidThreshold))
	}
	if c.MinFrequencyHz <= 0 || c.MaxFrequencyHz <= c.MinFrequencyHz {
		errs = append(errs, fmt.Errorf("%v-%v Hz: %w", c.MinFrequencyHz, c.MaxFrequencyHz, ErrInvalidRange))
	}
	if c.Method != MethodDirect && c.Method != MethodFFT {
		errs = append(errs, fmt.Errorf("pitch: unknown method %v", c.Method))
	}
	return errors.Join(errs...)
}

// Reason tells which stage rejected a frame
type Reason int

const (
	ReasonNone Reason = iota
	ReasonEmpty
	ReasonQuiet
	ReasonTooShort
	ReasonLowConfidence
	ReasonOutOfBand
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonEmpty:
		return "empty"
	case ReasonQuiet:
		return "quiet"
	case ReasonTooShort:
		return "too_short"
	case ReasonLowConfidence:
		return "low_confidence"
	case ReasonOutOfBand:
		return "out_of_band"
	default:
		return "unknown"
	}
}

// Estimate is the outcome of one detection. The zero value means no pitch.
type Estimate struct {
	Frequency float64
	Detected  bool
	Reason    Reason
}

// NoPitch returns a rejected estimate
func NoPitch(r Reason) Estimate {
	return Estimate{Reason: r}
}

// Detected returns an estimate for f
func Detected(f float64) Estimate {
	return Estimate{Frequency: f, Detected: true}
}

// Detector defines the interface for pitch detection
type Detector interface {
	// Detect estimates the fundamental frequency of one frame
	Detect(samples []float32, sampleRate float64) Estimate
}

// AutocorrDetector estimates pitch by time-domain autocorrelation
type AutocorrDetector struct {
	cfg Config
}

// NewAutocorrDetector creates a detector with the given thresholds
func NewAutocorrDetector(cfg Config) *AutocorrDetector {
	return &AutocorrDetector{cfg: cfg}
}

// Config returns the detector's thresholds
func (d *AutocorrDetector) Config() Config {
	return d.cfg
}

// Detect analyzes a frame and returns its fundamental frequency. It never
// fails: anything ambiguous comes back as NoPitch.
func (d *AutocorrDetector) Detect(samples []float32, sampleRate float64) Estimate {
	if len(samples) == 0 || !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return NoPitch(ReasonEmpty)
	}

	if rms(samples) < d.cfg.NoiseFloorRMS {
		return NoPitch(ReasonQuiet)
	}

	buf := trim(samples, float32(d.cfg.EdgeTrimThreshold))
	if len(buf) < d.cfg.MinTrimmedSamples || len(buf) < 2 {
		return NoPitch(ReasonTooShort)
	}

	var c []float64
	if d.cfg.Method == MethodFFT {
		c = autocorrelateFFT(buf)
	} else {
		c = autocorrelate(buf)
	}
	n := len(c)

	// Skip the zero-lag peak and its shoulder
	dip := 0
	for dip < n-1 && c[dip] > c[dip+1] {
		dip++
	}
	if dip == 0 {
		dip = 1
	}

	maxVal, maxPos := -1.0, -1
	for i := dip; i < n; i++ {
		if c[i] > maxVal {
			maxVal = c[i]
			maxPos = i
		}
	}
	if maxPos == -1 || maxVal < d.cfg.PeakConfidenceMin {
		return NoPitch(ReasonLowConfidence)
	}

	lag := refine(c, maxPos)
	if !(lag > 0) {
		return NoPitch(ReasonLowConfidence)
	}

	freq := sampleRate / lag
	if freq < d.cfg.MinFrequencyHz || freq > d.cfg.MaxFrequencyHz {
		return NoPitch(ReasonOutOfBand)
	}
	return Detected(freq)
}

// RMS returns the root-mean-square level of samples, 0 for an empty slice
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	return rms(samples)
}

func rms(samples []float32) float64 {
	sumSquares := 0.0
	for _, s := range samples {
		v := float64(s)
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// trim cuts the frame to the span between the first quiet sample from each
// edge, searching only the outer halves. An odd frame's middle sample
// belongs to both halves.
func trim(samples []float32, threshold float32) []float32 {
	size := len(samples)
	left, right := 0, size-1
	for i := 0; 2*i < size; i++ {
		if abs32(samples[i]) < threshold {
			left = i
			break
		}
	}
	for i := 1; 2*i < size; i++ {
		if abs32(samples[size-i]) < threshold {
			right = size - i
			break
		}
	}
	if right < left {
		return nil
	}
	return samples[left:right]
}

// refine moves the peak lag to the vertex of the parabola through its
// neighbours. Edge peaks and flat tops are returned unchanged.
func refine(c []float64, peak int) float64 {
	lag := float64(peak)
	if peak <= 0 || peak >= len(c)-1 {
		return lag
	}
	x1, x2, x3 := c[peak-1], c[peak], c[peak+1]
	a := (x1 + x3 - 2*x2) / 2
	b := (x3 - x1) / 2
	if a != 0 {
		lag -= b / (2 * a)
	}
	return lag
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
