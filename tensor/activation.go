package tensor

import (
	"math"

	"github.com/mtyhon/ckconv/internal/parallel"
)

func Relu(a *Tensor) *Tensor {
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			if v := a.data[i]; v > 0 {
				out.data[i] = v
			}
		}
	})
	if a.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{a}
		mask := Zeros(a.shape...)
		parallel.For(len(mask.data), func(start, end int) {
			for i := start; i < end; i++ {
				if a.data[i] > 0 {
					mask.data[i] = 1
				}
			}
		})
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				accumulate(grads, a, hadamard(grad, mask))
			},
		}
	}
	return out
}

func LeakyRelu(a *Tensor, alpha float64) *Tensor {
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			v := a.data[i]
			if v > 0 {
				out.data[i] = v
			} else {
				out.data[i] = alpha * v
			}
		}
	})
	if a.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{a}
		mask := Zeros(a.shape...)
		parallel.For(len(mask.data), func(start, end int) {
			for i := start; i < end; i++ {
				if a.data[i] > 0 {
					mask.data[i] = 1
				} else {
					mask.data[i] = alpha
				}
			}
		})
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				accumulate(grads, a, hadamard(grad, mask))
			},
		}
	}
	return out
}

func Sigmoid(a *Tensor) *Tensor {
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = 1 / (1 + math.Exp(-a.data[i]))
		}
	})
	if a.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{a}
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				factor := Zeros(a.shape...)
				parallel.For(len(factor.data), func(start, end int) {
					for i := start; i < end; i++ {
						s := out.data[i]
						factor.data[i] = s * (1 - s)
					}
				})
				accumulate(grads, a, hadamard(grad, factor))
			},
		}
	}
	return out
}

// Swish computes x * sigmoid(x).
func Swish(a *Tensor) *Tensor {
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			v := a.data[i]
			out.data[i] = v / (1 + math.Exp(-v))
		}
	})
	if a.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{a}
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				factor := Zeros(a.shape...)
				parallel.For(len(factor.data), func(start, end int) {
					for i := start; i < end; i++ {
						v := a.data[i]
						s := 1 / (1 + math.Exp(-v))
						factor.data[i] = s + v*s*(1-s)
					}
				})
				accumulate(grads, a, hadamard(grad, factor))
			},
		}
	}
	return out
}

func Sin(a *Tensor) *Tensor {
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = math.Sin(a.data[i])
		}
	})
	if a.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{a}
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				factor := Zeros(a.shape...)
				parallel.For(len(factor.data), func(start, end int) {
					for i := start; i < end; i++ {
						factor.data[i] = math.Cos(a.data[i])
					}
				})
				accumulate(grads, a, hadamard(grad, factor))
			},
		}
	}
	return out
}
