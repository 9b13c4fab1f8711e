package pitch

import (
	"fmt"
	"math"
)

// A4 is the tuning reference in Hz
const A4 = 440.0

// C0 is the frequency of C in octave 0 under A4 = 440 Hz
var C0 = A4 * math.Pow(2, -4.75)

// All note names in chromatic order
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteNames returns the chromatic scale starting at C
func NoteNames() [12]string {
	return noteNames
}

// Note represents a musical note matched to a measured frequency
type Note struct {
	Name      string  // e.g., "A", "A#", "B"
	Octave    int     // e.g., 4 for middle C (C4)
	Frequency float64 // Measured frequency in Hz
	Reference float64 // Equal-tempered frequency of the note in Hz
	Cents     int     // Deviation from Reference, (-50, +50] for positive input
	MIDI      int     // MIDI note number, C4 = 60
}

func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// Reading is one tuner measurement: the nearest note and how far the source
// frequency sits from it.
type Reading struct {
	Note     Note
	Cents    int
	SourceHz float64
}

// NewReading maps frequency onto its nearest note
func NewReading(frequency float64) Reading {
	n := MapToNote(frequency)
	return Reading{Note: n, Cents: n.Cents, SourceHz: frequency}
}

// MapToNote converts a positive frequency to the nearest equal-tempered note.
// Semitone ties round half away from zero.
func MapToNote(frequency float64) Note {
	h := semitone(12 * math.Log2(frequency/C0))

	octave := floorDiv(h, 12)
	index := h - octave*12
	reference := C0 * math.Pow(2, float64(h)/12)

	return Note{
		Name:      noteNames[index],
		Octave:    octave,
		Frequency: frequency,
		Reference: reference,
		Cents:     Cents(frequency, reference),
		MIDI:      h + 12,
	}
}

// Cents returns the rounded distance from reference to frequency in cents
func Cents(frequency, reference float64) int {
	return int(math.Round(1200 * math.Log2(frequency/reference)))
}

// NoteFrequency returns the reference frequency of name in octave
func NoteFrequency(name string, octave int) (float64, error) {
	for i, n := range noteNames {
		if n == name {
			h := octave*12 + i
			return C0 * math.Pow(2, float64(h)/12), nil
		}
	}
	return 0, fmt.Errorf("pitch: unknown note %q", name)
}

func semitone(x float64) int {
	return int(math.Round(x))
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
