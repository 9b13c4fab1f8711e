package audio

import (
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// DecodeWAV reads a whole WAV stream and downmixes it to mono
func DecodeWAV(r io.Reader) ([]float32, int, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, 0, fmt.Errorf("audio: decode wav: %w", err)
	}
	defer streamer.Close()

	samples, err := readMono(streamer, format.NumChannels)
	if err != nil {
		return nil, 0, err
	}
	return samples, int(format.SampleRate), nil
}

func readMono(s beep.Streamer, channels int) ([]float32, error) {
	var out []float32
	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			v := buf[i][0]
			if channels > 1 {
				v = (buf[i][0] + buf[i][1]) / 2
			}
			out = append(out, float32(v))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("audio: read wav: %w", err)
	}
	return out, nil
}

// Frames splits samples into windows of size, advancing hop samples each
// time. A trailing partial window is dropped.
func Frames(samples []float32, sampleRate, size, hop int) []Frame {
	if size <= 0 || hop <= 0 {
		return nil
	}
	var frames []Frame
	for start := 0; start+size <= len(samples); start += hop {
		frames = append(frames, Frame{
			Samples:    samples[start : start+size],
			SampleRate: sampleRate,
		})
	}
	return frames
}
