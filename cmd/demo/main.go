package main

import (
	"fmt"
	"math"

	"github.com/mtyhon/ckconv/loss"
	"github.com/mtyhon/ckconv/nn"
	"github.com/mtyhon/ckconv/optim"
	"github.com/mtyhon/ckconv/tensor"
)

// Fits a CKConv layer to a causal moving average of a noisy sine mix.
func main() {
	tensor.Seed(7)

	const (
		batch  = 4
		length = 64
		window = 8
		epochs = 100
	)

	inputs, targets := makeDataset(batch, length, window)

	ck, err := nn.NewCKConv(nn.CKConvConfig{
		InChannels:     1,
		OutChannels:    1,
		HiddenChannels: 16,
		Activation:     "Sine",
		Bias:           true,
		Omega0:         10,
	})
	if err != nil {
		panic(err)
	}
	opt := optim.NewAdam(ck.Parameters(), 1e-3, 0.9, 0.999, 1e-8)

	for epoch := 0; epoch < epochs; epoch++ {
		opt.ZeroGrad()
		pred, err := ck.Forward(inputs)
		if err != nil {
			panic(err)
		}
		l, err := loss.MSE(pred, targets)
		if err != nil {
			panic(err)
		}
		if err := l.Backward(); err != nil {
			panic(err)
		}
		if err := opt.Step(); err != nil {
			panic(err)
		}
		if epoch%10 == 0 || epoch == epochs-1 {
			fmt.Printf("epoch %3d  loss %.6f\n", epoch, l.Data()[0])
		}
	}
	fmt.Printf("calibrated length %d\n", ck.TrainLength())
}

// makeDataset builds [batch, 1, length] signals and their causal
// moving averages.
func makeDataset(batch, length, window int) (*tensor.Tensor, *tensor.Tensor) {
	signal := make([]float64, batch*length)
	target := make([]float64, batch*length)
	for b := 0; b < batch; b++ {
		phase := float64(b) * 0.7
		for t := 0; t < length; t++ {
			x := float64(t) / float64(length)
			signal[b*length+t] = math.Sin(2*math.Pi*3*x+phase) + 0.5*math.Sin(2*math.Pi*7*x)
		}
		for t := 0; t < length; t++ {
			acc := 0.0
			count := 0
			for j := t - window + 1; j <= t; j++ {
				if j >= 0 {
					acc += signal[b*length+j]
					count++
				}
			}
			target[b*length+t] = acc / float64(count)
		}
	}
	return tensor.MustNew(signal, batch, 1, length), tensor.MustNew(target, batch, 1, length)
}
