package theory

import (
	"fmt"
	"math"
	"time"
)

// Tempo limits for the metronome and tap tempo
const (
	MinBPM = 40
	MaxBPM = 240

	MinTapBPM = 60
	MaxTapBPM = 200
)

const (
	tapWindow  = 4               // taps averaged
	tapTimeout = 3 * time.Second // silence that starts a new measurement
)

// BeatInterval returns the time between beats at bpm
func BeatInterval(bpm int) (time.Duration, error) {
	if bpm < MinBPM || bpm > MaxBPM {
		return 0, fmt.Errorf("theory: tempo %d outside %d-%d bpm", bpm, MinBPM, MaxBPM)
	}
	return time.Minute / time.Duration(bpm), nil
}

// TapTempo averages the intervals between the last four taps and returns
// the rounded tempo. ok is false with fewer than two taps or a tempo
// outside MinTapBPM-MaxTapBPM.
func TapTempo(taps []time.Time) (bpm int, ok bool) {
	if len(taps) > tapWindow {
		taps = taps[len(taps)-tapWindow:]
	}
	if len(taps) < 2 {
		return 0, false
	}
	avg := taps[len(taps)-1].Sub(taps[0]) / time.Duration(len(taps)-1)
	if avg <= 0 {
		return 0, false
	}
	bpm = int(math.Round(float64(time.Minute) / float64(avg)))
	if bpm < MinTapBPM || bpm > MaxTapBPM {
		return bpm, false
	}
	return bpm, true
}

// Tapper collects taps, forgetting them after a pause
type Tapper struct {
	taps []time.Time
}

// Tap records a tap at now and returns the tempo so far
func (t *Tapper) Tap(now time.Time) (int, bool) {
	if n := len(t.taps); n > 0 && now.Sub(t.taps[n-1]) > tapTimeout {
		t.taps = t.taps[:0]
	}
	t.taps = append(t.taps, now)
	if len(t.taps) > tapWindow {
		t.taps = t.taps[1:]
	}
	return TapTempo(t.taps)
}

// Reset forgets all taps
func (t *Tapper) Reset() {
	t.taps = nil
}
