package tensor

// CausalConv1D convolves input [batch, channels, width] with weight
// [out_channels, in_channels, kernel_w] so that output position t only
// depends on input positions <= t. The width is preserved: the input is
// implicitly left-padded with kernel_w-1 zeros.
func CausalConv1D(input, weight, bias *Tensor) (*Tensor, error) {
	if err := checkConvArgs(input, weight, bias); err != nil {
		return nil, err
	}
	return conv1d(input, weight, bias, 1, weight.shape[2]-1, 0)
}

// CausalFFTConv1D computes exactly what CausalConv1D computes, with the
// forward pass done in the frequency domain. Worth it once kernels span
// the whole input, as continuous kernels do. The backward pass reuses
// the spatial gradient loops.
func CausalFFTConv1D(input, weight, bias *Tensor) (*Tensor, error) {
	if err := checkConvArgs(input, weight, bias); err != nil {
		return nil, err
	}
	batch := input.shape[0]
	inChannels := input.shape[1]
	inW := input.shape[2]
	outChannels := weight.shape[0]
	kernelW := weight.shape[2]

	padded := inW + kernelW - 1
	n := nextPow2(padded)

	// Transforms of the left-padded input rows.
	xf := make([][]complex128, batch*inChannels)
	for b := 0; b < batch; b++ {
		for ic := 0; ic < inChannels; ic++ {
			row := make([]complex128, n)
			base := (b*inChannels + ic) * inW
			for i := 0; i < inW; i++ {
				row[kernelW-1+i] = complex(input.data[base+i], 0)
			}
			fftInPlace(row, false)
			xf[b*inChannels+ic] = row
		}
	}

	// Transforms of the time-reversed kernel rows, which turns the
	// cross-correlation into a plain convolution.
	kf := make([][]complex128, outChannels*inChannels)
	for oc := 0; oc < outChannels; oc++ {
		for ic := 0; ic < inChannels; ic++ {
			row := make([]complex128, n)
			base := (oc*inChannels + ic) * kernelW
			for j := 0; j < kernelW; j++ {
				row[j] = complex(weight.data[base+kernelW-1-j], 0)
			}
			fftInPlace(row, false)
			kf[oc*inChannels+ic] = row
		}
	}

	out := Zeros(batch, outChannels, inW)
	acc := make([]complex128, n)
	for b := 0; b < batch; b++ {
		for oc := 0; oc < outChannels; oc++ {
			for i := range acc {
				acc[i] = 0
			}
			for ic := 0; ic < inChannels; ic++ {
				x := xf[b*inChannels+ic]
				k := kf[oc*inChannels+ic]
				for f := 0; f < n; f++ {
					acc[f] += x[f] * k[f]
				}
			}
			fftInPlace(acc, true)
			base := (b*outChannels + oc) * inW
			offset := 0.0
			if bias != nil {
				offset = bias.data[oc]
			}
			for t := 0; t < inW; t++ {
				out.data[base+t] = real(acc[t+kernelW-1]) + offset
			}
		}
	}
	attachConvGrad(out, input, weight, bias, 1, kernelW-1)
	return out, nil
}
