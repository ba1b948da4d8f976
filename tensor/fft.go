package tensor

import "math"

// Minimal iterative radix-2 FFT used by the frequency-domain causal
// convolution. Lengths are always powers of two chosen by the caller.

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func bitrevIndices(n int) []int {
	rev := make([]int, n)
	bits := 0
	for 1<<bits < n {
		bits++
	}
	for i := 0; i < n; i++ {
		r := 0
		for b := 0; b < bits; b++ {
			if i&(1<<b) != 0 {
				r |= 1 << (bits - 1 - b)
			}
		}
		rev[i] = r
	}
	return rev
}

// fftInPlace transforms a in place. With inverse set, the inverse
// transform is computed including the 1/n normalization.
func fftInPlace(a []complex128, inverse bool) {
	n := len(a)
	if n <= 1 {
		return
	}
	for i, r := range bitrevIndices(n) {
		if i < r {
			a[i], a[r] = a[r], a[i]
		}
	}
	sign := -1.0
	if inverse {
		sign = 1.0
	}
	for span := 2; span <= n; span <<= 1 {
		half := span / 2
		angle := sign * 2 * math.Pi / float64(span)
		wStep := complex(math.Cos(angle), math.Sin(angle))
		for start := 0; start < n; start += span {
			w := complex(1, 0)
			for k := 0; k < half; k++ {
				even := a[start+k]
				odd := a[start+k+half] * w
				a[start+k] = even + odd
				a[start+k+half] = even - odd
				w *= wStep
			}
		}
	}
	if inverse {
		scale := complex(1/float64(n), 0)
		for i := range a {
			a[i] *= scale
		}
	}
}
