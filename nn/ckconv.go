package nn

import (
	"errors"
	"fmt"
	"math"

	"github.com/mtyhon/ckconv/tensor"
)

// CKConvConfig configures a continuous kernel convolution.
type CKConvConfig struct {
	InChannels     int
	OutChannels    int
	HiddenChannels int
	Activation     string
	Norm           string
	Bias           bool
	Omega0         float64
	LearnOmega0    bool
	WeightDropout  float64
}

// CKConv is a causal convolution whose kernel is sampled from a
// KernelNet at the relative positions of the input. The layer
// calibrates itself to the first input length it sees; longer or
// shorter inputs at evaluation time are handled by extending the
// position range, rescaling the kernel by the sampling-rate ratio and,
// for upsampled inputs, blurring the kernel before use.
type CKConv struct {
	inChannels  int
	outChannels int
	kernel      *KernelNet
	bias        *tensor.Tensor

	trainLength   int
	relPositions  *tensor.Tensor
	srChange      float64
	sigma         float64
	sampledKernel *tensor.Tensor
}

func NewCKConv(cfg CKConvConfig) (*CKConv, error) {
	if cfg.InChannels <= 0 || cfg.OutChannels <= 0 {
		return nil, errors.New("CKConv requires positive channel counts")
	}
	kernel, err := NewKernelNet(KernelNetConfig{
		InChannels:     1,
		OutChannels:    cfg.OutChannels * cfg.InChannels,
		HiddenChannels: cfg.HiddenChannels,
		Activation:     cfg.Activation,
		Norm:           cfg.Norm,
		Bias:           cfg.Bias,
		Omega0:         cfg.Omega0,
		LearnOmega0:    cfg.LearnOmega0,
		WeightDropout:  cfg.WeightDropout,
	})
	if err != nil {
		return nil, err
	}
	c := &CKConv{
		inChannels:  cfg.InChannels,
		outChannels: cfg.OutChannels,
		kernel:      kernel,
		srChange:    1.0,
	}
	if cfg.Bias {
		c.bias = tensor.Zeros(cfg.OutChannels)
		c.bias.SetRequiresGrad(true)
	}
	return c, nil
}

func (c *CKConv) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	shape := input.Shape()
	if len(shape) != 3 {
		return nil, errors.New("CKConv expects input shape [batch, channels, width]")
	}
	if shape[1] != c.inChannels {
		return nil, fmt.Errorf("CKConv expects %d input channels, got %d", c.inChannels, shape[1])
	}
	width := shape[2]

	relPos, err := c.relativePositions(width)
	if err != nil {
		return nil, err
	}
	sampled, err := c.kernel.Forward(relPos)
	if err != nil {
		return nil, err
	}
	kernel, err := sampled.Reshape(c.outChannels, c.inChannels, width)
	if err != nil {
		return nil, err
	}
	if c.sigma > 0 {
		kernel = smoothKernel(kernel, c.sigma, c.srChange)
	}
	if c.srChange != 1.0 {
		kernel = tensor.MulScalar(kernel, c.srChange)
	}
	c.sampledKernel = kernel.Detach()

	// FFT convolution degrades on very short inputs, which only occur
	// when the input is subsampled below the calibration length.
	if width < c.trainLength {
		return tensor.CausalConv1D(input, kernel, c.bias)
	}
	return tensor.CausalFFTConv1D(input, kernel, c.bias)
}

// relativePositions returns the cached [1, 1, width] position vector,
// rebuilding it and the sampling-rate state when the width changes.
func (c *CKConv) relativePositions(width int) (*tensor.Tensor, error) {
	if c.relPositions != nil && c.relPositions.Shape()[2] == width {
		return c.relPositions, nil
	}
	if c.trainLength == 0 {
		c.trainLength = width
	}
	maxPos := maxRelativePosition(c.trainLength, width)
	lin, err := tensor.Linspace(-1, maxPos, width)
	if err != nil {
		return nil, err
	}
	relPos, err := lin.Reshape(1, 1, width)
	if err != nil {
		return nil, err
	}
	c.relPositions = relPos

	if c.trainLength > width {
		c.srChange = math.Round(float64(c.trainLength) / float64(width))
	} else {
		c.srChange = 1.0 / math.Round(float64(width)/float64(c.trainLength))
	}
	if c.srChange < 1 {
		c.sigma = 0.5
	} else {
		c.sigma = 0
	}
	return relPos, nil
}

// maxRelativePosition extends the unit position range so kernel samples
// stay aligned with the training grid when the input length changes.
func maxRelativePosition(trainLength, currentLength int) float64 {
	if trainLength < 2 || trainLength == currentLength {
		return 1
	}
	var srChange float64
	if trainLength > currentLength {
		srChange = math.Round(float64(trainLength) / float64(currentLength))
	} else {
		srChange = 1.0 / math.Round(float64(currentLength)/float64(trainLength))
	}
	trainStep := 2.0 / float64(trainLength-1)
	currentStep := trainStep * srChange

	if srChange > 1 {
		sub := float64((trainLength - 1) % int(srChange))
		return 1 - sub*trainStep
	}
	inv := int(math.Round(1 / srChange))
	add := float64((currentLength - 1) % inv)
	return 1 + add*currentStep
}

// smoothKernel blurs an upsampled kernel with a Gaussian window. Runs
// outside the autograd graph; it is only reached at evaluation time.
func smoothKernel(kernel *tensor.Tensor, sigma, srChange float64) *tensor.Tensor {
	shape := kernel.Shape()
	width := shape[2]
	n := int(1/srChange)*2 + 1
	h := n / 2
	if h < 1 {
		h = 1
	}
	if width <= 2*h {
		return kernel.Detach()
	}
	window := make([]float64, 2*h+1)
	norm := 1 / (sigma * math.Sqrt(2*math.Pi))
	for i := -h; i <= h; i++ {
		window[i+h] = norm * math.Exp(-float64(i*i)/(2*sigma*sigma))
	}
	data := kernel.Data()
	out := append([]float64(nil), data...)
	rows := shape[0] * shape[1]
	for r := 0; r < rows; r++ {
		base := r * width
		for t := h; t < width-h; t++ {
			acc := 0.0
			for j := -h; j <= h; j++ {
				acc += window[j+h] * data[base+t+j]
			}
			out[base+t] = acc
		}
	}
	return tensor.MustNew(out, shape...)
}

// Kernel returns the most recently sampled convolution kernel,
// detached from the graph.
func (c *CKConv) Kernel() *tensor.Tensor {
	return c.sampledKernel
}

// TrainLength reports the input length the layer calibrated to, or 0
// before the first forward pass.
func (c *CKConv) TrainLength() int {
	return c.trainLength
}

func (c *CKConv) Parameters() []*tensor.Tensor {
	params := c.kernel.Parameters()
	if c.bias != nil {
		params = append(params, c.bias)
	}
	return params
}

func (c *CKConv) ZeroGrad() {
	c.kernel.ZeroGrad()
	if c.bias != nil {
		c.bias.ZeroGrad()
	}
}

func (c *CKConv) Train() { c.kernel.Train() }
func (c *CKConv) Eval()  { c.kernel.Eval() }

func (c *CKConv) StateDict(prefix string, state map[string]*tensor.Tensor) {
	if state == nil {
		return
	}
	c.kernel.StateDict(joinPrefix(prefix, "kernel"), state)
	if c.bias != nil {
		state[joinPrefix(prefix, "bias")] = c.bias.Clone()
	}
	state[joinPrefix(prefix, "train_length")] = tensor.MustNew([]float64{float64(c.trainLength)}, 1)
}

func (c *CKConv) LoadState(prefix string, state map[string]*tensor.Tensor) error {
	if err := c.kernel.LoadState(joinPrefix(prefix, "kernel"), state); err != nil {
		return err
	}
	if c.bias != nil {
		key := joinPrefix(prefix, "bias")
		t, ok := state[key]
		if !ok {
			return fmt.Errorf("CKConv missing %s", key)
		}
		if err := tensor.CopyInto(c.bias, t); err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
	}
	key := joinPrefix(prefix, "train_length")
	t, ok := state[key]
	if !ok {
		return fmt.Errorf("CKConv missing %s", key)
	}
	length, err := t.Item()
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	c.trainLength = int(length)
	c.relPositions = nil
	c.srChange = 1.0
	c.sigma = 0
	return nil
}
