// Package config loads the tuner's YAML configuration and resolves it into
// detector and classifier settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/0xlemi/tunenote/internal/pitch"
)

// LogLevel is a log verbosity name
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a known level
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the top-level configuration file
type Config struct {
	LogLevel   LogLevel       `yaml:"log_level"`
	LogFile    string         `yaml:"log_file"`
	Profile    string         `yaml:"profile"`    // desktop | mobile
	Instrument string         `yaml:"instrument"` // guitar | bass | ukulele | chromatic
	Audio      AudioConfig    `yaml:"audio"`
	Detector   DetectorConfig `yaml:"detector"`
	Display    DisplayConfig  `yaml:"display"`
}

// AudioConfig controls the capture device and polling cadence
type AudioConfig struct {
	SampleRate    int           `yaml:"sample_rate"`
	FrameSize     int           `yaml:"frame_size"`
	Channels      int           `yaml:"channels"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	Amplification float64       `yaml:"amplification"`
}

// DetectorConfig overrides the profile's thresholds. A field left out of
// the file keeps the profile value; an explicit 0 is applied as written.
// Method is direct, fft, or empty/auto to pick by frame size.
type DetectorConfig struct {
	NoiseFloorRMS     *float64 `yaml:"noise_floor_rms"`
	EdgeTrimThreshold *float64 `yaml:"edge_trim_threshold"`
	MinTrimmedSamples *int     `yaml:"min_trimmed_samples"`
	PeakConfidenceMin *float64 `yaml:"peak_confidence_min"`
	MinFrequencyHz    *float64 `yaml:"min_frequency_hz"`
	MaxFrequencyHz    *float64 `yaml:"max_frequency_hz"`
	Method            string   `yaml:"method"`
}

// DirectFrameLimit is the largest frame the O(N²) direct correlation
// analyses within one polling interval on a typical desktop CPU. Larger
// frames use the FFT method.
const DirectFrameLimit = 4096

// MethodAuto picks the correlation method from the frame size
const MethodAuto = "auto"

// DisplayConfig holds the classifier's presentation thresholds
type DisplayConfig struct {
	NeedleMaxDegrees float64 `yaml:"needle_max_degrees"`
	InTuneCents      int     `yaml:"in_tune_cents"`
	MildDetuneCents  int     `yaml:"mild_detune_cents"`
}

// audioDefaults per device class: mobile trades resolution for latency
var audioDefaults = map[string]AudioConfig{
	pitch.ProfileDesktop: {SampleRate: 44100, FrameSize: 16384, Channels: 1, PollInterval: 16 * time.Millisecond, Amplification: 1},
	pitch.ProfileMobile:  {SampleRate: 48000, FrameSize: 8192, Channels: 1, PollInterval: 50 * time.Millisecond, Amplification: 1},
}

// Default returns the desktop guitar configuration
func Default() *Config {
	cls := pitch.DefaultClassifierConfig()
	return &Config{
		LogLevel:   LogInfo,
		Profile:    pitch.ProfileDesktop,
		Instrument: "guitar",
		Audio:      audioDefaults[pitch.ProfileDesktop],
		Display: DisplayConfig{
			NeedleMaxDegrees: cls.NeedleMaxDegrees,
			InTuneCents:      cls.InTuneCents,
			MildDetuneCents:  cls.MildDetuneCents,
		},
	}
}

// Load reads the YAML configuration file at path
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML over the defaults and validates the result.
// An audio section left out follows the chosen profile.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	cfg.Audio = AudioConfig{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.fillAudio()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyProfile switches device class, resetting audio settings to the
// class defaults
func (c *Config) ApplyProfile(profile string) {
	c.Profile = profile
	c.Audio = AudioConfig{}
	c.fillAudio()
}

func (c *Config) fillAudio() {
	def, ok := audioDefaults[c.Profile]
	if !ok {
		def = audioDefaults[pitch.ProfileDesktop]
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = def.SampleRate
	}
	if c.Audio.FrameSize == 0 {
		c.Audio.FrameSize = def.FrameSize
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = def.Channels
	}
	if c.Audio.PollInterval == 0 {
		c.Audio.PollInterval = def.PollInterval
	}
	if c.Audio.Amplification == 0 {
		c.Audio.Amplification = def.Amplification
	}
}

// Pitch resolves the profile, instrument range and overrides into detector
// thresholds
func (c *Config) Pitch() (pitch.Config, error) {
	pc, err := pitch.ProfileConfig(c.Profile)
	if err != nil {
		return pc, err
	}
	if c.Instrument != "" {
		r, err := pitch.LookupRange(c.Instrument)
		if err != nil {
			return pc, err
		}
		pc = pc.WithRange(r)
	}

	d := c.Detector
	setFloat(&pc.NoiseFloorRMS, d.NoiseFloorRMS)
	setFloat(&pc.EdgeTrimThreshold, d.EdgeTrimThreshold)
	if d.MinTrimmedSamples != nil {
		pc.MinTrimmedSamples = *d.MinTrimmedSamples
	}
	setFloat(&pc.PeakConfidenceMin, d.PeakConfidenceMin)
	setFloat(&pc.MinFrequencyHz, d.MinFrequencyHz)
	setFloat(&pc.MaxFrequencyHz, d.MaxFrequencyHz)

	switch d.Method {
	case "", MethodAuto:
		pc.Method = pitch.MethodDirect
		if c.Audio.FrameSize > DirectFrameLimit {
			pc.Method = pitch.MethodFFT
		}
	default:
		if pc.Method, err = pitch.ParseMethod(d.Method); err != nil {
			return pc, err
		}
	}
	return pc, pc.Validate()
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Classifier returns the display thresholds
func (c *Config) Classifier() pitch.ClassifierConfig {
	return pitch.ClassifierConfig{
		NeedleMaxDegrees: c.Display.NeedleMaxDegrees,
		InTuneCents:      c.Display.InTuneCents,
		MildDetuneCents:  c.Display.MildDetuneCents,
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing every failure.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", cfg.Audio.SampleRate))
	}
	if cfg.Audio.FrameSize < 256 {
		errs = append(errs, fmt.Errorf("audio.frame_size must be at least 256, got %d", cfg.Audio.FrameSize))
	}
	if cfg.Audio.Channels < 1 {
		errs = append(errs, fmt.Errorf("audio.channels must be at least 1, got %d", cfg.Audio.Channels))
	}
	if cfg.Audio.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("audio.poll_interval must be positive, got %v", cfg.Audio.PollInterval))
	}
	if cfg.Audio.Amplification < 0 {
		errs = append(errs, fmt.Errorf("audio.amplification must not be negative, got %v", cfg.Audio.Amplification))
	}
	if pc, err := cfg.Pitch(); err != nil {
		errs = append(errs, fmt.Errorf("detector: %w", err))
	} else if pc.Method == pitch.MethodDirect && cfg.Audio.FrameSize > DirectFrameLimit {
		errs = append(errs, fmt.Errorf("detector.method direct cannot keep up with audio.frame_size %d (max %d); use fft", cfg.Audio.FrameSize, DirectFrameLimit))
	}
	if err := cfg.Classifier().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}

	return errors.Join(errs...)
}
