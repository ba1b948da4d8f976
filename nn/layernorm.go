package nn

import (
	"fmt"

	"github.com/mtyhon/ckconv/tensor"
)

// LayerNorm normalizes each sample of a [batch, channels, width] signal
// over channels and positions jointly, with a per-channel affine.
type LayerNorm struct {
	channels int
	eps      float64
	weight   *tensor.Tensor
	bias     *tensor.Tensor
}

func NewLayerNorm(channels int, eps float64) *LayerNorm {
	if eps <= 0 {
		eps = 1e-5
	}
	weight := tensor.Ones(channels)
	bias := tensor.Zeros(channels)
	weight.SetRequiresGrad(true)
	bias.SetRequiresGrad(true)
	return &LayerNorm{channels: channels, eps: eps, weight: weight, bias: bias}
}

func (ln *LayerNorm) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.GroupNorm(input, ln.weight, ln.bias, ln.eps)
}

func (ln *LayerNorm) Parameters() []*tensor.Tensor {
	return []*tensor.Tensor{ln.weight, ln.bias}
}

func (ln *LayerNorm) ZeroGrad() {
	ln.weight.ZeroGrad()
	ln.bias.ZeroGrad()
}

func (ln *LayerNorm) StateDict(prefix string, state map[string]*tensor.Tensor) {
	if state == nil {
		return
	}
	state[joinPrefix(prefix, "weight")] = ln.weight.Clone()
	state[joinPrefix(prefix, "bias")] = ln.bias.Clone()
}

func (ln *LayerNorm) LoadState(prefix string, state map[string]*tensor.Tensor) error {
	for _, item := range []struct {
		name string
		dst  *tensor.Tensor
	}{{"weight", ln.weight}, {"bias", ln.bias}} {
		key := joinPrefix(prefix, item.name)
		t, ok := state[key]
		if !ok {
			return fmt.Errorf("LayerNorm missing %s", key)
		}
		if err := tensor.CopyInto(item.dst, t); err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
	}
	return nil
}
