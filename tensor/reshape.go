package tensor

import "errors"

// Reshape returns a tensor with the same elements and a new shape.
// The element count must be unchanged.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if len(shape) == 0 {
		return nil, errors.New("shape is required")
	}
	total := 1
	for _, dim := range shape {
		if dim <= 0 {
			return nil, errors.New("invalid shape")
		}
		total *= dim
	}
	if total != len(t.data) {
		return nil, errors.New("Reshape cannot change element count")
	}
	out := MustNew(t.data, shape...)
	if t.requiresGrad {
		out.requiresGrad = true
		out.parents = []*Tensor{t}
		srcShape := t.Shape()
		out.node = &node{
			backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
				accumulate(grads, t, MustNew(grad.data, srcShape...))
			},
		}
	}
	return out, nil
}
