package nn

import (
	"errors"
	"fmt"
	"math"

	"github.com/mtyhon/ckconv/tensor"
)

// Linear1d is a position-wise linear map over [batch, channels, width]
// signals, implemented as a kernel-1 convolution. With weight
// normalization enabled the weight is stored as direction v and gain g
// and recomposed as g*v/|v| on every forward pass.
type Linear1d struct {
	inChannels   int
	outChannels  int
	weightNormed bool
	weight       *tensor.Tensor
	v            *tensor.Tensor
	g            *tensor.Tensor
	bias         *tensor.Tensor
}

func NewLinear1d(inChannels, outChannels int, withBias bool) *Linear1d {
	l := &Linear1d{inChannels: inChannels, outChannels: outChannels}
	w := tensor.Randn(outChannels, inChannels, 1)
	w.Scale(math.Sqrt(2.0 / float64(inChannels+outChannels)))
	w.SetRequiresGrad(true)
	l.weight = w
	if withBias {
		l.bias = tensor.Zeros(outChannels)
		l.bias.SetRequiresGrad(true)
	}
	return l
}

// NewWeightNormLinear1d builds a weight-normalized Linear1d. The gain
// starts at the row norms of v, so the initial effective weight equals
// the sampled v.
func NewWeightNormLinear1d(inChannels, outChannels int, withBias bool) *Linear1d {
	l := &Linear1d{inChannels: inChannels, outChannels: outChannels, weightNormed: true}
	v := tensor.Randn(outChannels, inChannels, 1)
	v.Scale(math.Sqrt(2.0 / float64(inChannels+outChannels)))
	g, err := tensor.RowNorms(v)
	if err != nil {
		panic(err)
	}
	v.SetRequiresGrad(true)
	g.SetRequiresGrad(true)
	l.v = v
	l.g = g
	if withBias {
		l.bias = tensor.Zeros(outChannels)
		l.bias.SetRequiresGrad(true)
	}
	return l
}

func (l *Linear1d) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	w := l.weight
	if l.weightNormed {
		var err error
		w, err = tensor.WeightNorm(l.v, l.g)
		if err != nil {
			return nil, err
		}
	}
	return tensor.Conv1D(input, w, l.bias, 1, 0)
}

func (l *Linear1d) Parameters() []*tensor.Tensor {
	var params []*tensor.Tensor
	if l.weightNormed {
		params = append(params, l.v, l.g)
	} else {
		params = append(params, l.weight)
	}
	if l.bias != nil {
		params = append(params, l.bias)
	}
	return params
}

func (l *Linear1d) ZeroGrad() {
	for _, p := range l.Parameters() {
		p.ZeroGrad()
	}
}

func (l *Linear1d) InChannels() int  { return l.inChannels }
func (l *Linear1d) OutChannels() int { return l.outChannels }
func (l *Linear1d) HasBias() bool    { return l.bias != nil }

// EffectiveWeight returns the weight applied during forward as a
// detached [out, in, 1] tensor.
func (l *Linear1d) EffectiveWeight() *tensor.Tensor {
	if !l.weightNormed {
		return l.weight.Detach()
	}
	w, err := tensor.WeightNorm(l.v, l.g)
	if err != nil {
		panic(err)
	}
	return w.Detach()
}

// SetWeight overwrites the effective weight with the given [out*in]
// values. Under weight normalization the direction takes the values
// and the gain is reset to the row norms, keeping w == values.
func (l *Linear1d) SetWeight(values []float64) error {
	if len(values) != l.outChannels*l.inChannels {
		return errors.New("SetWeight expects out*in values")
	}
	target := l.weight
	if l.weightNormed {
		target = l.v
	}
	if err := target.SetData(values); err != nil {
		return err
	}
	if l.weightNormed {
		norms, err := tensor.RowNorms(l.v)
		if err != nil {
			return err
		}
		return l.g.SetData(norms.Data())
	}
	return nil
}

func (l *Linear1d) SetBias(values []float64) error {
	if l.bias == nil {
		return errors.New("Linear1d has no bias")
	}
	return l.bias.SetData(values)
}

func (l *Linear1d) StateDict(prefix string, state map[string]*tensor.Tensor) {
	if state == nil {
		return
	}
	if l.weightNormed {
		state[joinPrefix(prefix, "weight_v")] = l.v.Clone()
		state[joinPrefix(prefix, "weight_g")] = l.g.Clone()
	} else {
		state[joinPrefix(prefix, "weight")] = l.weight.Clone()
	}
	if l.bias != nil {
		state[joinPrefix(prefix, "bias")] = l.bias.Clone()
	}
}

func (l *Linear1d) LoadState(prefix string, state map[string]*tensor.Tensor) error {
	load := func(name string, dst *tensor.Tensor) error {
		key := joinPrefix(prefix, name)
		t, ok := state[key]
		if !ok {
			return fmt.Errorf("Linear1d missing %s", key)
		}
		if err := tensor.CopyInto(dst, t); err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
		return nil
	}
	if l.weightNormed {
		if err := load("weight_v", l.v); err != nil {
			return err
		}
		if err := load("weight_g", l.g); err != nil {
			return err
		}
	} else if err := load("weight", l.weight); err != nil {
		return err
	}
	if l.bias != nil {
		return load("bias", l.bias)
	}
	return nil
}
