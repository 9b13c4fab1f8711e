package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/0xlemi/tunenote/internal/pitch"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromReaderEmpty(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.FrameSize != 16384 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Audio.PollInterval != 16*time.Millisecond {
		t.Errorf("poll interval = %v", cfg.Audio.PollInterval)
	}
}

func TestLoadFromReaderMobileProfile(t *testing.T) {
	const doc = `
profile: mobile
instrument: chromatic
display:
  needle_max_degrees: 50
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.SampleRate != 48000 || cfg.Audio.PollInterval != 50*time.Millisecond {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Display.NeedleMaxDegrees != 50 || cfg.Display.InTuneCents != 5 {
		t.Errorf("display = %+v", cfg.Display)
	}

	pc, err := cfg.Pitch()
	if err != nil {
		t.Fatal(err)
	}
	if pc.NoiseFloorRMS != 0.01 || pc.MinTrimmedSamples != 50 {
		t.Errorf("mobile thresholds = %+v", pc)
	}
	if pc.MinFrequencyHz != 40 || pc.MaxFrequencyHz != 2000 {
		t.Errorf("chromatic range = %v-%v", pc.MinFrequencyHz, pc.MaxFrequencyHz)
	}
}

func TestDetectorOverrides(t *testing.T) {
	const doc = `
instrument: guitar
audio:
  poll_interval: 25ms
detector:
  noise_floor_rms: 0.02
  max_frequency_hz: 1500
  method: fft
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.PollInterval != 25*time.Millisecond {
		t.Errorf("poll interval = %v", cfg.Audio.PollInterval)
	}
	pc, err := cfg.Pitch()
	if err != nil {
		t.Fatal(err)
	}
	if pc.NoiseFloorRMS != 0.02 || pc.MaxFrequencyHz != 1500 || pc.MinFrequencyHz != 70 {
		t.Errorf("thresholds = %+v", pc)
	}
	if pc.Method != pitch.MethodFFT {
		t.Errorf("method = %v", pc.Method)
	}
}

func TestLoadFromReaderRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown field", "colour: red\n", "decode yaml"},
		{"bad log level", "log_level: loud\n", "log_level"},
		{"bad profile", "profile: toaster\n", "unknown profile"},
		{"bad instrument", "instrument: kazoo\n", "unknown instrument"},
		{"bad method", "detector:\n  method: yin\n", "unknown method"},
		{"inverted band", "detector:\n  min_frequency_hz: 900\n  max_frequency_hz: 100\n", "frequency range"},
		{"tiny frame", "audio:\n  frame_size: 16\n", "frame_size"},
		{"inverted cents", "display:\n  in_tune_cents: 20\n", "cents thresholds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tunenote.yaml")
	if err := os.WriteFile(path, []byte("instrument: bass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Instrument != "bass" {
		t.Errorf("instrument = %q", cfg.Instrument)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestApplyProfile(t *testing.T) {
	cfg := Default()
	cfg.ApplyProfile(pitch.ProfileMobile)
	if cfg.Audio.FrameSize != 8192 || cfg.Audio.SampleRate != 48000 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
}

func TestDefaultMethodFitsPollInterval(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		frame   int
		want    pitch.Method
	}{
		{"desktop default", pitch.ProfileDesktop, 0, pitch.MethodFFT},
		{"mobile default", pitch.ProfileMobile, 0, pitch.MethodFFT},
		{"small frame", pitch.ProfileDesktop, DirectFrameLimit, pitch.MethodDirect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ApplyProfile(tt.profile)
			if tt.frame > 0 {
				cfg.Audio.FrameSize = tt.frame
			}
			if err := Validate(cfg); err != nil {
				t.Fatal(err)
			}
			pc, err := cfg.Pitch()
			if err != nil {
				t.Fatal(err)
			}
			if pc.Method != tt.want {
				t.Errorf("method = %v, want %v", pc.Method, tt.want)
			}
			if pc.Method == pitch.MethodDirect && cfg.Audio.FrameSize > DirectFrameLimit {
				t.Errorf("direct method with %d-sample frames", cfg.Audio.FrameSize)
			}
		})
	}
}

func TestDirectMethodRejectsLargeFrames(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("detector:\n  method: direct\n"))
	if err == nil || !strings.Contains(err.Error(), "cannot keep up") {
		t.Fatalf("err = %v, want frame size rejection", err)
	}

	cfg, err := LoadFromReader(strings.NewReader("audio:\n  frame_size: 2048\ndetector:\n  method: direct\n"))
	if err != nil {
		t.Fatal(err)
	}
	if pc, _ := cfg.Pitch(); pc.Method != pitch.MethodDirect {
		t.Errorf("method = %v", pc.Method)
	}
}

func TestDetectorExplicitZero(t *testing.T) {
	const doc = `
detector:
  noise_floor_rms: 0
  peak_confidence_min: 0
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	pc, err := cfg.Pitch()
	if err != nil {
		t.Fatal(err)
	}
	if pc.NoiseFloorRMS != 0 || pc.PeakConfidenceMin != 0 {
		t.Errorf("explicit zeros dropped: %+v", pc)
	}
	// Fields left out keep the desktop profile
	if pc.MinTrimmedSamples != 100 || pc.EdgeTrimThreshold != 0.2 {
		t.Errorf("profile values lost: %+v", pc)
	}
}
