package tensor

import (
	"errors"

	"github.com/mtyhon/ckconv/internal/parallel"
)

func AddScalar(a *Tensor, value float64) *Tensor {
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] + value
		}
	})
	if a.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{a}
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				accumulate(grads, a, grad)
			},
		}
	}
	return out
}

func MulScalar(a *Tensor, value float64) *Tensor {
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] * value
		}
	})
	if a.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{a}
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				scaled := grad.Clone()
				scaled.Scale(value)
				accumulate(grads, a, scaled)
			},
		}
	}
	return out
}

// ScaleBy multiplies a by the single-element tensor s, with gradients
// flowing to both operands. The gradient of s is the inner product of
// the upstream gradient with a.
func ScaleBy(a, s *Tensor) (*Tensor, error) {
	if s == nil || s.Numel() != 1 {
		return nil, errors.New("ScaleBy requires a single-element scale tensor")
	}
	factor := s.data[0]
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] * factor
		}
	})
	attachBinaryGrad(out, a, s, func(grad *Tensor, grads map[*Tensor]*Tensor, left, right *Tensor) {
		if left.requiresGrad {
			scaled := grad.Clone()
			scaled.Scale(factor)
			accumulate(grads, left, scaled)
		}
		if right.requiresGrad {
			dot := 0.0
			for i := range grad.data {
				dot += grad.data[i] * left.data[i]
			}
			accumulate(grads, right, Full(dot, right.shape...))
		}
	})
	return out, nil
}
