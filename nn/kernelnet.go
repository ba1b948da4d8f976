package nn

import (
	"errors"
	"fmt"
	"math"

	"github.com/mtyhon/ckconv/tensor"
)

// KernelNetConfig configures the MLP that parameterizes a continuous
// convolutional kernel.
type KernelNetConfig struct {
	InChannels     int
	OutChannels    int
	HiddenChannels int
	Activation     string // "ReLU", "LeakyReLU", "Swish" or "Sine"
	Norm           string // "BatchNorm", "LayerNorm" or ""
	Bias           bool
	Omega0         float64
	LearnOmega0    bool
	WeightDropout  float64
}

// KernelNet maps relative positions to convolutional kernel values
// through a 3-layer MLP of weight-normalized position-wise linears:
//
//	positions -> hidden -> hidden -> in_channels * out_channels
//
// With the Sine activation the network is a SIREN: each linear is
// followed by a Multiply(omega0) and initialized with the SIREN scheme.
type KernelNet struct {
	cfg   KernelNetConfig
	siren bool
	l1    *Linear1d
	l2    *Linear1d
	l3    *Linear1d
	seq   *Sequential
}

func NewKernelNet(cfg KernelNetConfig) (*KernelNet, error) {
	if cfg.InChannels <= 0 || cfg.OutChannels <= 0 || cfg.HiddenChannels <= 0 {
		return nil, errors.New("KernelNet requires positive channel counts")
	}
	k := &KernelNet{cfg: cfg, siren: cfg.Activation == "Sine"}
	k.l1 = NewWeightNormLinear1d(cfg.InChannels, cfg.HiddenChannels, cfg.Bias)
	k.l2 = NewWeightNormLinear1d(cfg.HiddenChannels, cfg.HiddenChannels, cfg.Bias)
	k.l3 = NewWeightNormLinear1d(cfg.HiddenChannels, cfg.OutChannels, cfg.Bias)

	var mods []Module
	appendBlock := func(l *Linear1d) error {
		mods = append(mods, l)
		if k.siren {
			if cfg.LearnOmega0 {
				// Start at the same effective frequency as the fixed
				// configuration; the scalar trains from there.
				mods = append(mods, NewLearnedMultiply(cfg.Omega0/LearnedMultiplyGain))
			} else {
				mods = append(mods, Multiply(cfg.Omega0))
			}
		} else if cfg.Norm != "" {
			norm, err := newNorm(cfg.Norm, cfg.HiddenChannels)
			if err != nil {
				return err
			}
			mods = append(mods, norm)
		}
		act, err := newActivation(cfg.Activation)
		if err != nil {
			return err
		}
		mods = append(mods, act)
		return nil
	}
	if err := appendBlock(k.l1); err != nil {
		return nil, err
	}
	if err := appendBlock(k.l2); err != nil {
		return nil, err
	}
	mods = append(mods, k.l3)
	if cfg.WeightDropout > 0 {
		mods = append(mods, NewDropout(cfg.WeightDropout))
	}
	k.seq = NewSequential(mods...)

	if err := k.initialize(); err != nil {
		return nil, err
	}
	return k, nil
}

func newActivation(name string) (Module, error) {
	switch name {
	case "ReLU":
		return ReLU(), nil
	case "LeakyReLU":
		return LeakyReLU(0.01), nil
	case "Swish":
		return Swish(), nil
	case "Sine":
		return Sine(), nil
	}
	return nil, fmt.Errorf("unknown activation %q", name)
}

func newNorm(name string, channels int) (Module, error) {
	switch name {
	case "BatchNorm":
		return NewBatchNorm(channels), nil
	case "LayerNorm":
		return NewLayerNorm(channels, 0), nil
	}
	return nil, fmt.Errorf("unknown norm %q", name)
}

func (k *KernelNet) initialize() error {
	if k.siren {
		return k.initializeSiren()
	}
	return k.initializeNormal()
}

// initializeSiren applies the SIREN scheme: the first layer is sampled
// uniformly in (-1, 1), deeper layers in +-sqrt(6/fanIn)/omega0.
func (k *KernelNet) initializeSiren() error {
	cfg := k.cfg
	if err := k.l1.SetWeight(tensor.Uniform(-1, 1, cfg.HiddenChannels*cfg.InChannels).Data()); err != nil {
		return err
	}
	for _, l := range []*Linear1d{k.l2, k.l3} {
		bound := math.Sqrt(6.0/float64(l.InChannels())) / cfg.Omega0
		if err := l.SetWeight(tensor.Uniform(-bound, bound, l.OutChannels()*l.InChannels()).Data()); err != nil {
			return err
		}
	}
	if cfg.Bias {
		for _, l := range []*Linear1d{k.l1, k.l2, k.l3} {
			if err := l.SetBias(tensor.Uniform(-1, 1, l.OutChannels()).Data()); err != nil {
				return err
			}
		}
	}
	return nil
}

// initializeNormal draws all weights from N(0, 0.01^2) and, for scalar
// position inputs, spreads the first two biases so the hidden units
// activate across the (-1, 1) position range.
func (k *KernelNet) initializeNormal() error {
	for _, l := range []*Linear1d{k.l1, k.l2, k.l3} {
		w := tensor.Randn(l.OutChannels() * l.InChannels())
		w.Scale(0.01)
		if err := l.SetWeight(w.Data()); err != nil {
			return err
		}
	}
	if !k.cfg.Bias || k.cfg.InChannels != 1 || k.cfg.HiddenChannels < 2 {
		return nil
	}
	hidden := k.cfg.HiddenChannels
	positions, err := tensor.Linspace(-1, 1, hidden)
	if err != nil {
		return err
	}
	pos := positions.Data()
	w1 := k.l1.EffectiveWeight().Data()
	b1 := make([]float64, hidden)
	for o := 0; o < hidden; o++ {
		b1[o] = -pos[o] * w1[o]
	}
	if err := k.l1.SetBias(b1); err != nil {
		return err
	}

	step := pos[1] - pos[0]
	response := make([]float64, hidden)
	for i := 0; i < hidden; i++ {
		response[i] = (pos[i]+step)*w1[i] + b1[i]
	}
	w2 := k.l2.EffectiveWeight().Data()
	b2 := make([]float64, hidden)
	for o := 0; o < hidden; o++ {
		acc := 0.0
		for i := 0; i < hidden; i++ {
			acc -= w2[o*hidden+i] * response[i]
		}
		b2[o] = acc
	}
	return k.l2.SetBias(b2)
}

func (k *KernelNet) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	return k.seq.Forward(input)
}

func (k *KernelNet) Parameters() []*tensor.Tensor {
	return k.seq.Parameters()
}

func (k *KernelNet) ZeroGrad() {
	k.seq.ZeroGrad()
}

func (k *KernelNet) Train() { k.seq.Train() }
func (k *KernelNet) Eval()  { k.seq.Eval() }

func (k *KernelNet) StateDict(prefix string, state map[string]*tensor.Tensor) {
	k.seq.StateDict(prefix, state)
}

func (k *KernelNet) LoadState(prefix string, state map[string]*tensor.Tensor) error {
	return k.seq.LoadState(prefix, state)
}
