package optim

import (
	"math"

	"github.com/mtyhon/ckconv/tensor"
)

// ClipGradNorm rescales the gradients of params so their combined
// normType-norm does not exceed maxNorm. Returns the pre-clip norm.
func ClipGradNorm(params []*tensor.Tensor, maxNorm, normType float64) float64 {
	if maxNorm <= 0 {
		return 0
	}
	if normType <= 0 {
		normType = 2
	}
	total := 0.0
	for _, p := range params {
		if p != nil {
			total += p.GradPowSum(normType)
		}
	}
	norm := math.Pow(total, 1.0/normType)
	if norm > maxNorm && norm > 0 {
		scale := maxNorm / norm
		for _, p := range params {
			if p != nil {
				p.ScaleGrad(scale)
			}
		}
	}
	return norm
}

// ClipGradValue clamps every gradient element to [-clipValue, clipValue].
func ClipGradValue(params []*tensor.Tensor, clipValue float64) {
	if clipValue <= 0 {
		return
	}
	for _, p := range params {
		if p != nil {
			p.ClipGradValue(clipValue)
		}
	}
}
