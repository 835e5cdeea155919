package analysis

import (
	"math"
	"math/bits"
	"math/cmplx"
)

// FFT is a radix-2 transform. len(data) must be a power of two; use Pad
// otherwise.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// Pad removes the mean and zero-pads to the next power of two.
func Pad(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	n := 1
	if len(data) > 1 {
		n = 1 << bits.Len(uint(len(data)-1))
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	out := make([]float64, n)
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// PowerSpectrum is the magnitude of the first half of the FFT of the padded,
// mean-free series.
func PowerSpectrum(data []float64) []float64 {
	fft := FFT(Pad(data))
	ps := make([]float64, len(fft)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}

	return ps
}

// DominantFrequency is the frequency (in 1/time) of the strongest non-zero
// bin. It returns 0 for series too short to have one.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	n := 2 * len(ps)
	return float64(best) / (float64(n) * dt)
}
