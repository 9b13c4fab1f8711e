// Package theory holds the fixed lookup tables behind the chord chart, the
// scale finder and the guitar string hints.
package theory

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/0xlemi/tunenote/internal/pitch"
)

var (
	ErrUnknownRoot = errors.New("unknown root note")
	ErrUnknownType = errors.New("unknown type")
)

// Chord formulas as semitone offsets from the root
var chordFormulas = map[string][]int{
	"major": {0, 4, 7},
	"minor": {0, 3, 7},
	"7":     {0, 4, 7, 10},
	"m7":    {0, 3, 7, 10},
	"maj7":  {0, 4, 7, 11},
	"dim":   {0, 3, 6},
	"aug":   {0, 4, 8},
	"sus2":  {0, 2, 7},
	"sus4":  {0, 5, 7},
}

// Scale formulas as semitone offsets from the root
var scaleFormulas = map[string][]int{
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"phrygian":   {0, 1, 3, 5, 7, 8, 10},
	"lydian":     {0, 2, 4, 6, 7, 9, 11},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"locrian":    {0, 1, 3, 5, 6, 8, 10},
	"harmonic":   {0, 2, 3, 5, 7, 8, 11},
	"melodic":    {0, 2, 3, 5, 7, 9, 11},
	"pentatonic": {0, 2, 4, 7, 9},
	"blues":      {0, 3, 5, 6, 7, 10},
}

// ChordTypes returns the known chord types, sorted
func ChordTypes() []string { return keys(chordFormulas) }

// ScaleTypes returns the known scale types, sorted
func ScaleTypes() []string { return keys(scaleFormulas) }

// Chord returns the notes of a chord, e.g. Chord("A", "minor") = A C E
func Chord(root, kind string) ([]string, error) {
	formula, ok := chordFormulas[kind]
	if !ok {
		return nil, fmt.Errorf("theory: chord %w %q", ErrUnknownType, kind)
	}
	return spell(root, formula)
}

// Scale returns the notes of a scale starting at root
func Scale(root, kind string) ([]string, error) {
	formula, ok := scaleFormulas[kind]
	if !ok {
		return nil, fmt.Errorf("theory: scale %w %q", ErrUnknownType, kind)
	}
	return spell(root, formula)
}

// Intervals returns the step pattern of a scale in semitones, including the
// step back up to the octave (major = 2 2 1 2 2 2 1).
func Intervals(kind string) ([]int, error) {
	formula, ok := scaleFormulas[kind]
	if !ok {
		return nil, fmt.Errorf("theory: scale %w %q", ErrUnknownType, kind)
	}
	steps := make([]int, len(formula))
	for i := range formula {
		next := 12
		if i+1 < len(formula) {
			next = formula[i+1]
		}
		steps[i] = next - formula[i]
	}
	return steps, nil
}

func spell(root string, formula []int) ([]string, error) {
	idx := noteIndex(root)
	if idx < 0 {
		return nil, fmt.Errorf("theory: %w %q", ErrUnknownRoot, root)
	}
	names := pitch.NoteNames()
	notes := make([]string, len(formula))
	for i, interval := range formula {
		notes[i] = names[(idx+interval)%12]
	}
	return notes, nil
}

func noteIndex(name string) int {
	for i, n := range pitch.NoteNames() {
		if n == name {
			return i
		}
	}
	return -1
}

func keys(m map[string][]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// GuitarString is one open string of a guitar
type GuitarString struct {
	Number    int // 1 is the high E
	Name      string
	Octave    int
	Frequency float64
}

func (s GuitarString) String() string {
	return fmt.Sprintf("%d (%s%d)", s.Number, s.Name, s.Octave)
}

// standardTuning is E2 A2 D3 G3 B3 E4, low to high
var standardTuning = []GuitarString{
	{Number: 6, Name: "E", Octave: 2, Frequency: 82.41},
	{Number: 5, Name: "A", Octave: 2, Frequency: 110.00},
	{Number: 4, Name: "D", Octave: 3, Frequency: 146.83},
	{Number: 3, Name: "G", Octave: 3, Frequency: 196.00},
	{Number: 2, Name: "B", Octave: 3, Frequency: 246.94},
	{Number: 1, Name: "E", Octave: 4, Frequency: 329.63},
}

// StandardTuning returns the open strings from low E to high E
func StandardTuning() []GuitarString {
	out := make([]GuitarString, len(standardTuning))
	copy(out, standardTuning)
	return out
}

// StringByNumber returns string n, 1 being the high E
func StringByNumber(n int) (GuitarString, bool) {
	for _, s := range standardTuning {
		if s.Number == n {
			return s, true
		}
	}
	return GuitarString{}, false
}

// NearestString returns the open string closest to frequency on a
// logarithmic scale
func NearestString(frequency float64) GuitarString {
	best := standardTuning[0]
	bestDist := math.Inf(1)
	for _, s := range standardTuning {
		d := math.Abs(math.Log2(frequency / s.Frequency))
		if d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}
