package nn

import "github.com/mtyhon/ckconv/tensor"

// FunctionLayer lifts a plain tensor function into a Module. It holds
// no parameters; the forward pass is exactly the wrapped function.
type FunctionLayer struct {
	fn func(*tensor.Tensor) (*tensor.Tensor, error)
}

func NewFunctionLayer(fn func(*tensor.Tensor) (*tensor.Tensor, error)) *FunctionLayer {
	return &FunctionLayer{fn: fn}
}

func (f *FunctionLayer) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	return f.fn(input)
}

func (f *FunctionLayer) Parameters() []*tensor.Tensor { return nil }

func (f *FunctionLayer) ZeroGrad() {}
