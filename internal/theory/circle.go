package theory

import "fmt"

// circleOfFifths runs clockwise from C
var circleOfFifths = []string{"C", "G", "D", "A", "E", "B", "F#", "C#", "G#", "D#", "A#", "F"}

// KeySignature describes a major key
type KeySignature struct {
	Key           string
	Sharps        int
	Flats         int
	RelativeMinor string
}

var keySignatures = map[string]KeySignature{
	"C":  {Key: "C", RelativeMinor: "Am"},
	"G":  {Key: "G", Sharps: 1, RelativeMinor: "Em"},
	"D":  {Key: "D", Sharps: 2, RelativeMinor: "Bm"},
	"A":  {Key: "A", Sharps: 3, RelativeMinor: "F#m"},
	"E":  {Key: "E", Sharps: 4, RelativeMinor: "C#m"},
	"B":  {Key: "B", Sharps: 5, RelativeMinor: "G#m"},
	"F#": {Key: "F#", Sharps: 6, RelativeMinor: "D#m"},
	"F":  {Key: "F", Flats: 1, RelativeMinor: "Dm"},
	"Bb": {Key: "Bb", Flats: 2, RelativeMinor: "Gm"},
	"Eb": {Key: "Eb", Flats: 3, RelativeMinor: "Cm"},
	"Ab": {Key: "Ab", Flats: 4, RelativeMinor: "Fm"},
	"Db": {Key: "Db", Flats: 5, RelativeMinor: "Bbm"},
	"Gb": {Key: "Gb", Flats: 6, RelativeMinor: "Ebm"},
}

// Sharp spellings on the circle that are written as flat keys
var enharmonic = map[string]string{
	"C#": "Db",
	"D#": "Eb",
	"G#": "Ab",
	"A#": "Bb",
}

// CircleOfFifths returns the twelve keys clockwise from C
func CircleOfFifths() []string {
	out := make([]string, len(circleOfFifths))
	copy(out, circleOfFifths)
	return out
}

// LookupKey returns the signature of a major key. Sharp names without a
// sharp key signature resolve to their flat spelling, e.g. C# to Db.
func LookupKey(key string) (KeySignature, error) {
	if alt, ok := enharmonic[key]; ok {
		key = alt
	}
	ks, ok := keySignatures[key]
	if !ok {
		return KeySignature{}, fmt.Errorf("theory: key %w %q", ErrUnknownRoot, key)
	}
	return ks, nil
}

// Neighbours returns the keys a fifth below and a fifth above key on the
// circle
func Neighbours(key string) (down, up string, err error) {
	for i, k := range circleOfFifths {
		if k == key {
			n := len(circleOfFifths)
			return circleOfFifths[(i+n-1)%n], circleOfFifths[(i+1)%n], nil
		}
	}
	return "", "", fmt.Errorf("theory: key %w %q", ErrUnknownRoot, key)
}
