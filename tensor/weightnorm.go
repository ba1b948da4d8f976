package tensor

import (
	"errors"
	"math"
)

// WeightNorm reparameterizes a weight as w = g * v / ||v||, with the
// norm taken per output row (the leading dimension of v). g must be
// rank 1 with one element per row. Gradients flow to both v and g.
func WeightNorm(v, g *Tensor) (*Tensor, error) {
	if v == nil || len(v.shape) < 2 {
		return nil, errors.New("WeightNorm requires a weight of rank >= 2")
	}
	if g == nil || len(g.shape) != 1 || g.shape[0] != v.shape[0] {
		return nil, errors.New("WeightNorm gain must be rank 1 with one element per row")
	}
	rows := v.shape[0]
	rowSize := v.Numel() / rows

	norms := make([]float64, rows)
	for o := 0; o < rows; o++ {
		sum := 0.0
		base := o * rowSize
		for j := 0; j < rowSize; j++ {
			sum += v.data[base+j] * v.data[base+j]
		}
		norms[o] = math.Sqrt(sum)
	}

	out := Zeros(v.shape...)
	for o := 0; o < rows; o++ {
		scale := g.data[o] / norms[o]
		base := o * rowSize
		for j := 0; j < rowSize; j++ {
			out.data[base+j] = v.data[base+j] * scale
		}
	}

	attachBinaryGrad(out, v, g, func(grad *Tensor, grads map[*Tensor]*Tensor, left, right *Tensor) {
		var gv, gg *Tensor
		if left.requiresGrad {
			gv = Zeros(left.shape...)
		}
		if right.requiresGrad {
			gg = Zeros(right.shape...)
		}
		for o := 0; o < rows; o++ {
			base := o * rowSize
			norm := norms[o]
			dot := 0.0
			for j := 0; j < rowSize; j++ {
				dot += grad.data[base+j] * left.data[base+j]
			}
			if gg != nil {
				gg.data[o] = dot / norm
			}
			if gv != nil {
				gain := right.data[o]
				for j := 0; j < rowSize; j++ {
					gv.data[base+j] = gain/norm*grad.data[base+j] -
						gain*dot/(norm*norm*norm)*left.data[base+j]
				}
			}
		}
		if gv != nil {
			accumulate(grads, left, gv)
		}
		if gg != nil {
			accumulate(grads, right, gg)
		}
	})
	return out, nil
}

// RowNorms returns the Euclidean norm of each leading-dimension row.
// Used to initialize weight-norm gains so the effective weight starts
// equal to v.
func RowNorms(v *Tensor) (*Tensor, error) {
	if v == nil || len(v.shape) < 2 {
		return nil, errors.New("RowNorms requires a tensor of rank >= 2")
	}
	rows := v.shape[0]
	rowSize := v.Numel() / rows
	data := make([]float64, rows)
	for o := 0; o < rows; o++ {
		sum := 0.0
		base := o * rowSize
		for j := 0; j < rowSize; j++ {
			sum += v.data[base+j] * v.data[base+j]
		}
		data[o] = math.Sqrt(sum)
	}
	return New(data, rows)
}
