package tensor

import (
	"errors"
	"math"
)

// GroupNorm normalizes each sample of a [batch, channels, width] tensor
// over all of its channels and positions (a single group), then applies
// a per-channel affine transform. This is the layer-norm flavor used in
// front of continuous-kernel networks.
func GroupNorm(input, weight, bias *Tensor, eps float64) (*Tensor, error) {
	if input == nil || len(input.shape) != 3 {
		return nil, errors.New("GroupNorm expects input shape [batch, channels, width]")
	}
	channels := input.shape[1]
	if weight != nil && (len(weight.shape) != 1 || weight.shape[0] != channels) {
		return nil, errors.New("GroupNorm weight must be rank 1 with channels elements")
	}
	if bias != nil && (len(bias.shape) != 1 || bias.shape[0] != channels) {
		return nil, errors.New("GroupNorm bias must be rank 1 with channels elements")
	}
	if eps <= 0 {
		eps = 1e-5
	}
	batch := input.shape[0]
	width := input.shape[2]
	groupSize := channels * width

	out := Zeros(input.shape...)
	xhat := make([]float64, input.Numel())
	invStds := make([]float64, batch)
	for b := 0; b < batch; b++ {
		offset := b * groupSize
		sum := 0.0
		for j := 0; j < groupSize; j++ {
			sum += input.data[offset+j]
		}
		mean := sum / float64(groupSize)
		varSum := 0.0
		for j := 0; j < groupSize; j++ {
			diff := input.data[offset+j] - mean
			varSum += diff * diff
		}
		invStd := 1.0 / math.Sqrt(varSum/float64(groupSize)+eps)
		invStds[b] = invStd
		for c := 0; c < channels; c++ {
			for w := 0; w < width; w++ {
				idx := offset + c*width + w
				xh := (input.data[idx] - mean) * invStd
				xhat[idx] = xh
				val := xh
				if weight != nil {
					val *= weight.data[c]
				}
				if bias != nil {
					val += bias.data[c]
				}
				out.data[idx] = val
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
	groupSizeF := float64(groupSize)

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
			gh := make([]float64, groupSize)
			for b := 0; b < batch; b++ {
				offset := b * groupSize
				sumGh := 0.0
				sumGhXhat := 0.0
				for c := 0; c < channels; c++ {
					for w := 0; w < width; w++ {
						idx := offset + c*width + w
						g := grad.data[idx]
						h := g
						if weightData != nil {
							h *= weightData[c]
						}
						gh[c*width+w] = h
						sumGh += h
						sumGhXhat += h * xhat[idx]
						if gWeight != nil {
							gWeight.data[c] += g * xhat[idx]
						}
						if gBias != nil {
							gBias.data[c] += g
						}
					}
				}
				if gInput != nil {
					meanGh := sumGh / groupSizeF
					meanGhXhat := sumGhXhat / groupSizeF
					invStd := invStds[b]
					for j := 0; j < groupSize; j++ {
						idx := offset + j
						gInput.data[idx] = invStd * (gh[j] - meanGh - xhat[idx]*meanGhXhat)
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
