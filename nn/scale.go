package nn

import (
	"fmt"

	"github.com/mtyhon/ckconv/tensor"
)

// LearnedMultiplyGain is the fixed rescaling applied to the learned
// frequency parameter inside LearnedMultiply: the effective scale is
// always LearnedMultiplyGain times the stored scalar.
const LearnedMultiplyGain = 100.0

// Multiply returns a layer that scales its input by the fixed omega0.
func Multiply(omega0 float64) *FunctionLayer {
	return NewFunctionLayer(func(x *tensor.Tensor) (*tensor.Tensor, error) {
		return tensor.MulScalar(x, omega0), nil
	})
}

// LearnedMultiply scales its input by a trainable frequency. The
// stored scalar starts at omega0 and the forward pass multiplies by
// LearnedMultiplyGain times the scalar, so the initial output equals
// 100*omega0*x until an optimizer moves the parameter.
type LearnedMultiply struct {
	omega0 *tensor.Tensor
}

func NewLearnedMultiply(omega0 float64) *LearnedMultiply {
	// The scalar is filled before it is marked trainable, so the
	// initialization never appears on the autograd graph.
	w := tensor.Full(omega0, 1)
	w.SetRequiresGrad(true)
	return &LearnedMultiply{omega0: w}
}

func (m *LearnedMultiply) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := tensor.ScaleBy(input, m.omega0)
	if err != nil {
		return nil, err
	}
	return tensor.MulScalar(out, LearnedMultiplyGain), nil
}

func (m *LearnedMultiply) Parameters() []*tensor.Tensor {
	return []*tensor.Tensor{m.omega0}
}

func (m *LearnedMultiply) ZeroGrad() {
	m.omega0.ZeroGrad()
}

// Omega0 exposes the trainable scalar, e.g. for optimizers built over
// raw parameter lists or for inspection in tests.
func (m *LearnedMultiply) Omega0() *tensor.Tensor {
	return m.omega0
}

func (m *LearnedMultiply) StateDict(prefix string, state map[string]*tensor.Tensor) {
	if state == nil {
		return
	}
	state[joinPrefix(prefix, "omega_0")] = m.omega0.Clone()
}

func (m *LearnedMultiply) LoadState(prefix string, state map[string]*tensor.Tensor) error {
	key := joinPrefix(prefix, "omega_0")
	t, ok := state[key]
	if !ok {
		return fmt.Errorf("LearnedMultiply missing %s", key)
	}
	if err := tensor.CopyInto(m.omega0, t); err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	return nil
}
