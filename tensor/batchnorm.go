package tensor

import (
	"errors"
	"math"
)

// BatchNorm1D normalizes a [batch, channels, width] tensor per channel
// over the batch and width dimensions. In training mode the batch
// statistics are used and the running statistics updated in place; in
// evaluation mode the running statistics are used.
func BatchNorm1D(input, runningMean, runningVar, weight, bias *Tensor, momentum, eps float64, training bool) (*Tensor, error) {
	if input == nil || len(input.shape) != 3 {
		return nil, errors.New("BatchNorm1D expects input shape [batch, channels, width]")
	}
	channels := input.shape[1]
	for _, t := range []*Tensor{runningMean, runningVar, weight, bias} {
		if t != nil && (len(t.shape) != 1 || t.shape[0] != channels) {
			return nil, errors.New("BatchNorm1D statistics must be rank 1 with channels elements")
		}
	}
	if eps <= 0 {
		eps = 1e-5
	}
	batch := input.shape[0]
	width := input.shape[2]
	count := float64(batch * width)

	mean := make([]float64, channels)
	invStd := make([]float64, channels)
	if training {
		for c := 0; c < channels; c++ {
			sum := 0.0
			for n := 0; n < batch; n++ {
				base := (n*channels + c) * width
				for w := 0; w < width; w++ {
					sum += input.data[base+w]
				}
			}
			mean[c] = sum / count
		}
		for c := 0; c < channels; c++ {
			varSum := 0.0
			for n := 0; n < batch; n++ {
				base := (n*channels + c) * width
				for w := 0; w < width; w++ {
					diff := input.data[base+w] - mean[c]
					varSum += diff * diff
				}
			}
			variance := varSum / count
			invStd[c] = 1.0 / math.Sqrt(variance+eps)
			if runningMean != nil {
				runningMean.data[c] = (1-momentum)*runningMean.data[c] + momentum*mean[c]
			}
			if runningVar != nil {
				runningVar.data[c] = (1-momentum)*runningVar.data[c] + momentum*variance
			}
		}
	} else {
		if runningMean == nil || runningVar == nil {
			return nil, errors.New("BatchNorm1D eval mode requires running statistics")
		}
		for c := 0; c < channels; c++ {
			mean[c] = runningMean.data[c]
			invStd[c] = 1.0 / math.Sqrt(runningVar.data[c]+eps)
		}
	}

	out := Zeros(input.shape...)
	xhat := make([]float64, input.Numel())
	for n := 0; n < batch; n++ {
		for c := 0; c < channels; c++ {
			base := (n*channels + c) * width
			for w := 0; w < width; w++ {
				xh := (input.data[base+w] - mean[c]) * invStd[c]
				xhat[base+w] = xh
				val := xh
				if weight != nil {
					val *= weight.data[c]
				}
				if bias != nil {
					val += bias.data[c]
				}
				out.data[base+w] = val
			}
		}
	}

	requireGrad := input.requiresGrad ||
		(weight != nil && weight.requiresGrad) ||
		(bias != nil && bias.requiresGrad)
	if !requireGrad {
		return out, nil
	}

	parents := make([]*Tensor, 0, 3)
	if input.requiresGrad {
		parents = append(parents, input)
	}
	if weight != nil && weight.requiresGrad {
		parents = append(parents, weight)
	}
	if bias != nil && bias.requiresGrad {
		parents = append(parents, bias)
	}
	out.requiresGrad = true
	out.parents = parents

	weightData := []float64(nil)
	if weight != nil {
		weightData = append([]float64(nil), weight.data...)
	}

	out.node = &node{
		backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
			var gInput, gWeight, gBias *Tensor
			if input.requiresGrad {
				gInput = Zeros(input.shape...)
			}
			if weight != nil && weight.requiresGrad {
				gWeight = Zeros(weight.shape...)
			}
			if bias != nil && bias.requiresGrad {
				gBias = Zeros(bias.shape...)
			}
			for c := 0; c < channels; c++ {
				scale := 1.0
				if weightData != nil {
					scale = weightData[c]
				}
				sumGh := 0.0
				sumGhXhat := 0.0
				for n := 0; n < batch; n++ {
					base := (n*channels + c) * width
					for w := 0; w < width; w++ {
						g := grad.data[base+w]
						sumGh += g * scale
						sumGhXhat += g * scale * xhat[base+w]
						if gWeight != nil {
							gWeight.data[c] += g * xhat[base+w]
						}
						if gBias != nil {
							gBias.data[c] += g
						}
					}
				}
				if gInput == nil {
					continue
				}
				meanGh := sumGh / count
				meanGhXhat := sumGhXhat / count
				for n := 0; n < batch; n++ {
					base := (n*channels + c) * width
					for w := 0; w < width; w++ {
						gh := grad.data[base+w] * scale
						if training {
							gInput.data[base+w] = invStd[c] * (gh - meanGh - xhat[base+w]*meanGhXhat)
						} else {
							gInput.data[base+w] = invStd[c] * gh
						}
					}
				}
			}
			if gInput != nil {
				accumulate(grads, input, gInput)
			}
			if gWeight != nil {
				accumulate(grads, weight, gWeight)
			}
			if gBias != nil {
				accumulate(grads, bias, gBias)
			}
		},
	}
	return out, nil
}
