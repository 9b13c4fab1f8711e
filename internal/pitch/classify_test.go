package pitch

import (
	"testing"
)

func intPtr(v int) *int { return &v }

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())

	tests := []struct {
		name   string
		cents  *int
		state  State
		severe bool
		label  string
	}{
		{"no detection", nil, StateNoSignal, false, "NO SIGNAL"},
		{"dead on", intPtr(0), StateInTune, false, "PERFECT!"},
		{"in tune sharp edge", intPtr(5), StateInTune, false, "PERFECT!"},
		{"in tune flat edge", intPtr(-5), StateInTune, false, "PERFECT!"},
		{"mild sharp", intPtr(6), StateSharp, false, "TOO HIGH"},
		{"mild flat", intPtr(-10), StateFlat, false, "TOO LOW"},
		{"severe flat", intPtr(-11), StateFlat, true, "WAY TOO LOW"},
		{"severe sharp", intPtr(42), StateSharp, true, "WAY TOO HIGH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.cents)
			if got.State != tt.state {
				t.Errorf("state = %v, want %v", got.State, tt.state)
			}
			if got.Severe != tt.severe {
				t.Errorf("severe = %v, want %v", got.Severe, tt.severe)
			}
			if got.Label != tt.label {
				t.Errorf("label = %q, want %q", got.Label, tt.label)
			}
		})
	}
}

func TestClassifyNeedle(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())

	tests := []struct {
		cents *int
		want  float64
	}{
		{nil, 0},
		{intPtr(0), 0},
		{intPtr(-25), -22.5},
		{intPtr(50), 45},
		{intPtr(120), 45},
		{intPtr(-300), -45},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.cents).NeedleDegrees; got != tt.want {
			t.Errorf("needle(%v) = %v, want %v", tt.cents, got, tt.want)
		}
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	c := NewClassifier(ClassifierConfig{NeedleMaxDegrees: 50, InTuneCents: 2, MildDetuneCents: 20})
	if got := c.Classify(intPtr(3)); got.State != StateSharp || got.Severe {
		t.Errorf("3 cents = %+v", got)
	}
	if got := c.Classify(intPtr(-20)); got.State != StateFlat || got.Severe {
		t.Errorf("-20 cents = %+v", got)
	}
	if got := c.Needle(25); got != 25 {
		t.Errorf("needle(25) = %v", got)
	}
}

func TestClassifierConfigValidate(t *testing.T) {
	if err := DefaultClassifierConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	bad := ClassifierConfig{NeedleMaxDegrees: 45, InTuneCents: 10, MildDetuneCents: 5}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for inverted thresholds")
	}
}

func TestStateString(t *testing.T) {
	if StateInTune.String() != "in_tune" || StateNoSignal.String() != "no_signal" {
		t.Error("unexpected state names")
	}
	if State(99).String() != "State(99)" {
		t.Errorf("got %q", State(99).String())
	}
}
