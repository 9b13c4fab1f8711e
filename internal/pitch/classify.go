package pitch

import (
	"fmt"
	"math"
)

// State is the tuner's user-facing accuracy state
type State int

const (
	StateReady State = iota
	StateListening
	StateInTune
	StateFlat
	StateSharp
	StateNoSignal
	StateError
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateListening:
		return "listening"
	case StateInTune:
		return "in_tune"
	case StateFlat:
		return "flat"
	case StateSharp:
		return "sharp"
	case StateNoSignal:
		return "no_signal"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ClassifierConfig holds the display thresholds
type ClassifierConfig struct {
	NeedleMaxDegrees float64 // Needle deflection at ±50 cents
	InTuneCents      int     // |cents| at or below this is in tune
	MildDetuneCents  int     // |cents| at or below this is a mild detune
}

// DefaultClassifierConfig returns the standard display thresholds
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		NeedleMaxDegrees: 45,
		InTuneCents:      5,
		MildDetuneCents:  10,
	}
}

// Validate checks that the thresholds are ordered
func (c ClassifierConfig) Validate() error {
	if c.NeedleMaxDegrees <= 0 {
		return fmt.Errorf("needle max degrees %v: %w", c.NeedleMaxDegrees, ErrInvalidThreshold)
	}
	if c.InTuneCents < 0 || c.MildDetuneCents < c.InTuneCents {
		return fmt.Errorf("cents thresholds %d/%d: %w", c.InTuneCents, c.MildDetuneCents, ErrInvalidThreshold)
	}
	return nil
}

// Assessment is the classifier's verdict for one reading
type Assessment struct {
	State         State
	Severe        bool    // Flat or sharp beyond the mild threshold
	NeedleDegrees float64 // Negative is flat
	Label         string
}

// Classifier turns cents into an accuracy state. It keeps no state between
// calls.
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier creates a classifier
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify assesses a cents deviation. A nil cents means nothing was
// detected this cycle.
func (c *Classifier) Classify(cents *int) Assessment {
	if cents == nil {
		return Assessment{State: StateNoSignal, Label: "NO SIGNAL"}
	}

	v := *cents
	a := Assessment{NeedleDegrees: c.Needle(v)}
	mag := v
	if mag < 0 {
		mag = -mag
	}

	switch {
	case mag <= c.cfg.InTuneCents:
		a.State = StateInTune
		a.Label = "PERFECT!"
	case v < 0:
		a.State = StateFlat
		a.Severe = mag > c.cfg.MildDetuneCents
		a.Label = "TOO LOW"
		if a.Severe {
			a.Label = "WAY TOO LOW"
		}
	default:
		a.State = StateSharp
		a.Severe = mag > c.cfg.MildDetuneCents
		a.Label = "TOO HIGH"
		if a.Severe {
			a.Label = "WAY TOO HIGH"
		}
	}
	return a
}

// Needle maps cents to a needle angle, clamped to the configured deflection
func (c *Classifier) Needle(cents int) float64 {
	maxDeg := c.cfg.NeedleMaxDegrees
	deg := float64(cents) / 50 * maxDeg
	return math.Max(-maxDeg, math.Min(maxDeg, deg))
}
