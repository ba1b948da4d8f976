package tensor

import "errors"

// Tensor is a dense float64 tensor with an optional autograd node.
type Tensor struct {
	data         []float64
	shape        []int
	strides      []int
	grad         *Tensor
	requiresGrad bool
	node         *node
	parents      []*Tensor
}

type node struct {
	backward func(grad *Tensor, grads map[*Tensor]*Tensor)
}

func New(data []float64, shape ...int) (*Tensor, error) {
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
	if total != len(data) {
		return nil, errors.New("data and shape mismatch")
	}
	return &Tensor{
		data:    append([]float64(nil), data...),
		shape:   append([]int(nil), shape...),
		strides: makeStrides(shape),
	}, nil
}

func MustNew(data []float64, shape ...int) *Tensor {
	t, err := New(data, shape...)
	if err != nil {
		panic(err)
	}
	return t
}

func Zeros(shape ...int) *Tensor {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	return MustNew(make([]float64, size), shape...)
}

func Ones(shape ...int) *Tensor {
	return Full(1, shape...)
}

func Full(value float64, shape ...int) *Tensor {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	data := make([]float64, size)
	for i := range data {
		data[i] = value
	}
	return MustNew(data, shape...)
}

// Linspace returns steps evenly spaced values from lo to hi inclusive,
// as a rank-1 tensor.
func Linspace(lo, hi float64, steps int) (*Tensor, error) {
	if steps <= 0 {
		return nil, errors.New("Linspace requires a positive step count")
	}
	data := make([]float64, steps)
	if steps == 1 {
		data[0] = lo
		return New(data, 1)
	}
	step := (hi - lo) / float64(steps-1)
	for i := range data {
		data[i] = lo + float64(i)*step
	}
	data[steps-1] = hi
	return New(data, steps)
}

func (t *Tensor) Clone() *Tensor {
	if t == nil {
		return nil
	}
	return &Tensor{
		data:    append([]float64(nil), t.data...),
		shape:   append([]int(nil), t.shape...),
		strides: append([]int(nil), t.strides...),
	}
}

func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

func (t *Tensor) Numel() int {
	return len(t.data)
}

func (t *Tensor) Data() []float64 {
	return append([]float64(nil), t.data...)
}

// Item returns the value of a single-element tensor.
func (t *Tensor) Item() (float64, error) {
	if t == nil || len(t.data) != 1 {
		return 0, errors.New("Item requires a single-element tensor")
	}
	return t.data[0], nil
}

// SetData overwrites the tensor's values. The slice must match Numel().
func (t *Tensor) SetData(values []float64) error {
	if len(values) != len(t.data) {
		return errors.New("SetData expects matching element count")
	}
	copy(t.data, values)
	return nil
}

func (t *Tensor) SetRequiresGrad(v bool) {
	t.requiresGrad = v
}

func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

func (t *Tensor) Grad() *Tensor {
	if t.grad == nil {
		return nil
	}
	return t.grad.Clone()
}

func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

// Detach returns a copy disconnected from the autograd graph.
func (t *Tensor) Detach() *Tensor {
	clone := t.Clone()
	clone.requiresGrad = false
	clone.node = nil
	clone.parents = nil
	return clone
}

// CopyInto copies the contents of src into dst. Shapes must match exactly.
func CopyInto(dst, src *Tensor) error {
	if dst == nil || src == nil {
		return errors.New("CopyInto requires non-nil tensors")
	}
	if len(dst.shape) != len(src.shape) {
		return errors.New("CopyInto shape rank mismatch")
	}
	for i, dim := range dst.shape {
		if dim != src.shape[i] {
			return errors.New("CopyInto shape mismatch")
		}
	}
	copy(dst.data, src.data)
	return nil
}

func makeStrides(shape []int) []int {
	if len(shape) == 0 {
		return nil
	}
	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return strides
}
