package tensor

import (
	"errors"
	"math"

	"github.com/mtyhon/ckconv/internal/parallel"
)

func Add(a, b *Tensor) (*Tensor, error) {
	if err := ensureSameShape(a, b); err != nil {
		return nil, err
	}
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] + b.data[i]
		}
	})
	attachBinaryGrad(out, a, b, func(grad *Tensor, grads map[*Tensor]*Tensor, left, right *Tensor) {
		if left.requiresGrad {
			accumulate(grads, left, grad)
		}
		if right.requiresGrad {
			accumulate(grads, right, grad)
		}
	})
	return out, nil
}

func Sub(a, b *Tensor) (*Tensor, error) {
	if err := ensureSameShape(a, b); err != nil {
		return nil, err
	}
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] - b.data[i]
		}
	})
	attachBinaryGrad(out, a, b, func(grad *Tensor, grads map[*Tensor]*Tensor, left, right *Tensor) {
		if left.requiresGrad {
			accumulate(grads, left, grad)
		}
		if right.requiresGrad {
			neg := grad.Clone()
			neg.Scale(-1)
			accumulate(grads, right, neg)
		}
	})
	return out, nil
}

func Mul(a, b *Tensor) (*Tensor, error) {
	if err := ensureSameShape(a, b); err != nil {
		return nil, err
	}
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] * b.data[i]
		}
	})
	attachBinaryGrad(out, a, b, func(grad *Tensor, grads map[*Tensor]*Tensor, left, right *Tensor) {
		if left.requiresGrad {
			accumulate(grads, left, hadamard(grad, right.Detach()))
		}
		if right.requiresGrad {
			accumulate(grads, right, hadamard(grad, left.Detach()))
		}
	})
	return out, nil
}

func Pow(a *Tensor, value float64) *Tensor {
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = math.Pow(a.data[i], value)
		}
	})
	if a.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{a}
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				factor := a.Detach()
				parallel.For(len(factor.data), func(start, end int) {
					for i := start; i < end; i++ {
						factor.data[i] = value * math.Pow(factor.data[i], value-1)
					}
				})
				accumulate(grads, a, hadamard(grad, factor))
			},
		}
	}
	return out
}

func Sum(a *Tensor) *Tensor {
	val := 0.0
	for _, v := range a.data {
		val += v
	}
	out := MustNew([]float64{val}, 1)
	if a.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{a}
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				accumulate(grads, a, Full(grad.data[0], a.shape...))
			},
		}
	}
	return out
}

func Mean(a *Tensor) *Tensor {
	scale := 1.0 / float64(a.Numel())
	val := 0.0
	for _, v := range a.data {
		val += v
	}
	out := MustNew([]float64{val * scale}, 1)
	if a.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{a}
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				accumulate(grads, a, Full(grad.data[0]*scale, a.shape...))
			},
		}
	}
	return out
}

func hadamard(a, b *Tensor) *Tensor {
	if err := ensureSameShape(a, b); err != nil {
		panic(err)
	}
	out := Zeros(a.shape...)
	parallel.For(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[i] * b.data[i]
		}
	})
	return out
}

func attachBinaryGrad(out, a, b *Tensor, backward func(grad *Tensor, grads map[*Tensor]*Tensor, left, right *Tensor)) {
	if !(a.requiresGrad || b.requiresGrad) {
		return
	}
	out.requiresGrad = true
	parents := make([]*Tensor, 0, 2)
	if a.requiresGrad {
		parents = append(parents, a)
	}
	if b.requiresGrad {
		parents = append(parents, b)
	}
	out.parents = parents
	out.node = &node{
		backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
			backward(grad, grads, a, b)
		},
	}
}

func ensureSameShape(a, b *Tensor) error {
	if len(a.shape) != len(b.shape) {
		return errors.New("shape mismatch")
	}
	for i, dim := range a.shape {
		if dim != b.shape[i] {
			return errors.New("shape mismatch")
		}
	}
	return nil
}
