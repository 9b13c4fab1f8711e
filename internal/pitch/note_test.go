package pitch

import (
	"math"
	"testing"
)

func TestMapToNote(t *testing.T) {
	tests := []struct {
		freq   float64
		name   string
		octave int
		cents  int
		midi   int
	}{
		{440.0, "A", 4, 0, 69},
		{110.0, "A", 2, 0, 45},
		{466.16, "A#", 4, 0, 70},
		{261.63, "C", 4, 0, 60},
		{82.41, "E", 2, 0, 40},
		{329.63, "E", 4, 0, 64},
		{16.3516, "C", 0, 0, 12},
		{440 * 1.01, "A", 4, 17, 69},
		{440 * 0.99, "A", 4, -17, 69},
	}
	for _, tt := range tests {
		got := MapToNote(tt.freq)
		if got.Name != tt.name || got.Octave != tt.octave || got.Cents != tt.cents || got.MIDI != tt.midi {
			t.Errorf("MapToNote(%v) = %s%d %+d cents midi %d, want %s%d %+d cents midi %d",
				tt.freq, got.Name, got.Octave, got.Cents, got.MIDI, tt.name, tt.octave, tt.cents, tt.midi)
		}
		if got.Frequency != tt.freq {
			t.Errorf("MapToNote(%v).Frequency = %v", tt.freq, got.Frequency)
		}
	}
}

func TestMapToNoteReference(t *testing.T) {
	got := MapToNote(445)
	if math.Abs(got.Reference-440) > 1e-9 {
		t.Errorf("reference = %v, want 440", got.Reference)
	}
	if got.String() != "A4" {
		t.Errorf("String() = %q", got.String())
	}
}

func TestMapToNoteBelowC0(t *testing.T) {
	// 10 Hz is 8.5 semitones under C0 and rounds to -9, i.e. D#-1
	got := MapToNote(10)
	if got.Name != "D#" || got.Octave != -1 {
		t.Errorf("MapToNote(10) = %s%d, want D#-1", got.Name, got.Octave)
	}
}

func TestMapToNoteIdempotent(t *testing.T) {
	for f := 30.0; f < 2000; f *= 1.037 {
		first := MapToNote(f)
		again := MapToNote(first.Reference)
		if again.Cents != 0 {
			t.Errorf("%v Hz: reference %v maps to %+d cents", f, first.Reference, again.Cents)
		}
		if again.Name != first.Name || again.Octave != first.Octave {
			t.Errorf("%v Hz: %s then %s", f, first, again)
		}
	}
}

func TestMapToNoteCentsBounded(t *testing.T) {
	for f := 20.0; f < 4000; f *= 1.0013 {
		n := MapToNote(f)
		if n.Cents < -50 || n.Cents > 50 {
			t.Fatalf("%v Hz: %+d cents", f, n.Cents)
		}
	}
}

func TestCentsSign(t *testing.T) {
	ref := 196.0
	if c := Cents(ref*1.01, ref); c <= 0 {
		t.Errorf("1%% sharp gave %d cents", c)
	}
	if c := Cents(ref*0.99, ref); c >= 0 {
		t.Errorf("1%% flat gave %d cents", c)
	}
	if c := Cents(ref*2, ref); c != 1200 {
		t.Errorf("octave gave %d cents", c)
	}
}

func TestSemitoneTiesRoundAwayFromZero(t *testing.T) {
	tests := map[float64]int{
		57.5:  58,
		2.5:   3,
		-0.5:  -1,
		-8.5:  -9,
		57.49: 57,
	}
	for in, want := range tests {
		if got := semitone(in); got != want {
			t.Errorf("semitone(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{57, 12, 4},
		{0, 12, 0},
		{-1, 12, -1},
		{-12, 12, -1},
		{-13, 12, -2},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNoteFrequency(t *testing.T) {
	f, err := NoteFrequency("A", 4)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-440) > 1e-9 {
		t.Errorf("A4 = %v", f)
	}
	if _, err := NoteFrequency("H", 4); err == nil {
		t.Error("expected error for unknown note")
	}
}

func TestNewReading(t *testing.T) {
	r := NewReading(112)
	if r.Note.Name != "A" || r.Note.Octave != 2 {
		t.Errorf("note = %s", r.Note)
	}
	if r.Cents != r.Note.Cents || r.Cents <= 0 {
		t.Errorf("cents = %d", r.Cents)
	}
	if r.SourceHz != 112 {
		t.Errorf("source = %v", r.SourceHz)
	}
}
