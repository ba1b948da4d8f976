package nn

import (
	"fmt"

	"github.com/mtyhon/ckconv/tensor"
)

// BatchNorm is 1-D batch normalization over [batch, channels, width]
// with per-channel affine parameters and running statistics.
type BatchNorm struct {
	features    int
	momentum    float64
	eps         float64
	training    bool
	weight      *tensor.Tensor
	bias        *tensor.Tensor
	runningMean *tensor.Tensor
	runningVar  *tensor.Tensor
}

func NewBatchNorm(features int) *BatchNorm {
	weight := tensor.Ones(features)
	bias := tensor.Zeros(features)
	weight.SetRequiresGrad(true)
	bias.SetRequiresGrad(true)
	return &BatchNorm{
		features:    features,
		momentum:    0.1,
		eps:         1e-5,
		training:    true,
		weight:      weight,
		bias:        bias,
		runningMean: tensor.Zeros(features),
		runningVar:  tensor.Ones(features),
	}
}

func (bn *BatchNorm) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.BatchNorm1D(input, bn.runningMean, bn.runningVar, bn.weight, bn.bias,
		bn.momentum, bn.eps, bn.training)
}

func (bn *BatchNorm) Parameters() []*tensor.Tensor {
	return []*tensor.Tensor{bn.weight, bn.bias}
}

func (bn *BatchNorm) ZeroGrad() {
	bn.weight.ZeroGrad()
	bn.bias.ZeroGrad()
}

func (bn *BatchNorm) Train() { bn.training = true }
func (bn *BatchNorm) Eval()  { bn.training = false }

func (bn *BatchNorm) StateDict(prefix string, state map[string]*tensor.Tensor) {
	if state == nil {
		return
	}
	state[joinPrefix(prefix, "weight")] = bn.weight.Clone()
	state[joinPrefix(prefix, "bias")] = bn.bias.Clone()
	state[joinPrefix(prefix, "running_mean")] = bn.runningMean.Clone()
	state[joinPrefix(prefix, "running_var")] = bn.runningVar.Clone()
}

func (bn *BatchNorm) LoadState(prefix string, state map[string]*tensor.Tensor) error {
	for _, item := range []struct {
		name string
		dst  *tensor.Tensor
	}{
		{"weight", bn.weight},
		{"bias", bn.bias},
		{"running_mean", bn.runningMean},
		{"running_var", bn.runningVar},
	} {
		key := joinPrefix(prefix, item.name)
		t, ok := state[key]
		if !ok {
			return fmt.Errorf("BatchNorm missing %s", key)
		}
		if err := tensor.CopyInto(item.dst, t); err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
	}
	return nil
}
