package nn

import "github.com/mtyhon/ckconv/tensor"

func ReLU() *FunctionLayer {
	return NewFunctionLayer(func(x *tensor.Tensor) (*tensor.Tensor, error) {
		return tensor.Relu(x), nil
	})
}

func LeakyReLU(alpha float64) *FunctionLayer {
	return NewFunctionLayer(func(x *tensor.Tensor) (*tensor.Tensor, error) {
		return tensor.LeakyRelu(x, alpha), nil
	})
}

func Swish() *FunctionLayer {
	return NewFunctionLayer(func(x *tensor.Tensor) (*tensor.Tensor, error) {
		return tensor.Swish(x), nil
	})
}

// Sine is the SIREN activation. Frequency scaling happens in the
// Multiply layers placed before it, so this is a plain sin.
func Sine() *FunctionLayer {
	return NewFunctionLayer(func(x *tensor.Tensor) (*tensor.Tensor, error) {
		return tensor.Sin(x), nil
	})
}

func Identity() *FunctionLayer {
	return NewFunctionLayer(func(x *tensor.Tensor) (*tensor.Tensor, error) {
		return x, nil
	})
}
