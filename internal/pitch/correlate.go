package pitch

import (
	"github.com/mjibson/go-dsp/fft"
)

// autocorrelate computes c[i] = Σ x[j]·x[j+i] for every lag by direct
// summation. Frames are a few thousand samples, so O(N²) fits in one tick.
func autocorrelate(x []float32) []float64 {
	n := len(x)
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n-i; j++ {
			sum += float64(x[j]) * float64(x[j+i])
		}
		c[i] = sum
	}
	return c
}

// autocorrelateFFT computes the same linear autocorrelation through the
// power spectrum. The input is zero-padded to at least 2N so the circular
// result does not wrap.
func autocorrelateFFT(x []float32) []float64 {
	n := len(x)
	size := nextPow2(2 * n)

	padded := make([]float64, size)
	for i, s := range x {
		padded[i] = float64(s)
	}

	spectrum := fft.FFTReal(padded)
	for i, v := range spectrum {
		// |X|² = X·conj(X)
		spectrum[i] = complex(real(v)*real(v)+imag(v)*imag(v), 0)
	}
	corr := fft.IFFT(spectrum)

	c := make([]float64, n)
	for i := range c {
		c[i] = real(corr[i])
	}
	return c
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
