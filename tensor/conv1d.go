package tensor

import "errors"

// Conv1D performs 1D cross-correlation over input [batch, channels, width]
// with symmetric zero padding.
func Conv1D(input, weight, bias *Tensor, stride, pad int) (*Tensor, error) {
	return conv1d(input, weight, bias, stride, pad, pad)
}

func conv1d(input, weight, bias *Tensor, stride, padLeft, padRight int) (*Tensor, error) {
	if err := checkConvArgs(input, weight, bias); err != nil {
		return nil, err
	}
	if stride <= 0 {
		return nil, errors.New("stride must be positive")
	}
	inW := input.shape[2]
	kernelW := weight.shape[2]
	outW := (inW+padLeft+padRight-kernelW)/stride + 1
	if outW <= 0 {
		return nil, errors.New("invalid output size")
	}
	out := Zeros(input.shape[0], weight.shape[0], outW)
	convAccumulate(out, input, weight, bias, stride, padLeft)
	attachConvGrad(out, input, weight, bias, stride, padLeft)
	return out, nil
}

func checkConvArgs(input, weight, bias *Tensor) error {
	if input == nil || len(input.shape) != 3 {
		return errors.New("conv1d expects input shape [batch, channels, width]")
	}
	if weight == nil || len(weight.shape) != 3 {
		return errors.New("conv1d expects weight shape [out_channels, in_channels, kernel_w]")
	}
	if weight.shape[1] != input.shape[1] {
		return errors.New("kernel in_channels mismatch")
	}
	if bias != nil {
		if len(bias.shape) != 1 || bias.shape[0] != weight.shape[0] {
			return errors.New("bias must be rank 1 with out_channels elements")
		}
	}
	return nil
}

// convAccumulate fills out with the cross-correlation of input and weight.
// out must be pre-sized; padLeft positions the kernel relative to the input.
func convAccumulate(out, input, weight, bias *Tensor, stride, padLeft int) {
	batch := input.shape[0]
	inChannels := input.shape[1]
	inW := input.shape[2]
	outChannels := weight.shape[0]
	kernelW := weight.shape[2]
	outW := out.shape[2]
	for n := 0; n < batch; n++ {
		for oc := 0; oc < outChannels; oc++ {
			for ow := 0; ow < outW; ow++ {
				acc := 0.0
				for ic := 0; ic < inChannels; ic++ {
					inBase := (n*inChannels + ic) * inW
					wBase := (oc*inChannels + ic) * kernelW
					for kw := 0; kw < kernelW; kw++ {
						iw := ow*stride - padLeft + kw
						if iw < 0 || iw >= inW {
							continue
						}
						acc += input.data[inBase+iw] * weight.data[wBase+kw]
					}
				}
				if bias != nil {
					acc += bias.data[oc]
				}
				out.data[(n*outChannels+oc)*outW+ow] = acc
			}
		}
	}
}

// attachConvGrad wires the backward pass shared by the spatial and FFT
// convolution forwards.
func attachConvGrad(out, input, weight, bias *Tensor, stride, padLeft int) {
	biasGrad := bias != nil && bias.requiresGrad
	if !(input.requiresGrad || weight.requiresGrad || biasGrad) {
		return
	}
	parents := make([]*Tensor, 0, 3)
	if input.requiresGrad {
		parents = append(parents, input)
	}
	if weight.requiresGrad {
		parents = append(parents, weight)
	}
	if biasGrad {
		parents = append(parents, bias)
	}
	out.requiresGrad = true
	out.parents = parents

	batch := input.shape[0]
	inChannels := input.shape[1]
	inW := input.shape[2]
	outChannels := weight.shape[0]
	kernelW := weight.shape[2]
	outW := out.shape[2]

	out.node = &node{
		backward: func(grad *Tensor, grads map[*Tensor]*Tensor) {
			var gInput, gWeight, gBias *Tensor
			if input.requiresGrad {
				gInput = Zeros(input.shape...)
			}
			if weight.requiresGrad {
				gWeight = Zeros(weight.shape...)
			}
			if biasGrad {
				gBias = Zeros(bias.shape...)
			}
			for n := 0; n < batch; n++ {
				for oc := 0; oc < outChannels; oc++ {
					for ow := 0; ow < outW; ow++ {
						gVal := grad.data[(n*outChannels+oc)*outW+ow]
						if gBias != nil {
							gBias.data[oc] += gVal
						}
						if gInput == nil && gWeight == nil {
							continue
						}
						for ic := 0; ic < inChannels; ic++ {
							inBase := (n*inChannels + ic) * inW
							wBase := (oc*inChannels + ic) * kernelW
							for kw := 0; kw < kernelW; kw++ {
								iw := ow*stride - padLeft + kw
								if iw < 0 || iw >= inW {
									continue
								}
								if gInput != nil {
									gInput.data[inBase+iw] += weight.data[wBase+kw] * gVal
								}
								if gWeight != nil {
									gWeight.data[wBase+kw] += input.data[inBase+iw] * gVal
								}
							}
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
}
