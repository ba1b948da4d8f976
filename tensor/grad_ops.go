package tensor

import "math"

func (t *Tensor) GradPowSum(norm float64) float64 {
	if t == nil || t.grad == nil {
		return 0
	}
	sum := 0.0
	for _, v := range t.grad.data {
		sum += math.Pow(math.Abs(v), norm)
	}
	return sum
}

func (t *Tensor) ScaleGrad(factor float64) {
	if t == nil || t.grad == nil {
		return
	}
	t.grad.Scale(factor)
}

func (t *Tensor) ClipGradValue(limit float64) {
	if t == nil || t.grad == nil || limit <= 0 {
		return
	}
	for i, v := range t.grad.data {
		if v > limit {
			t.grad.data[i] = limit
		} else if v < -limit {
			t.grad.data[i] = -limit
		}
	}
}
