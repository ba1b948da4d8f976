package optim

import (
	"math"

	"github.com/mtyhon/ckconv/tensor"
)

type Adam struct {
	params []*tensor.Tensor
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	m      map[*tensor.Tensor][]float64
	v      map[*tensor.Tensor][]float64
	step   int
}

func NewAdam(params []*tensor.Tensor, lr, beta1, beta2, eps float64) *Adam {
	return &Adam{
		params: params,
		lr:     lr,
		beta1:  beta1,
		beta2:  beta2,
		eps:    eps,
		m:      map[*tensor.Tensor][]float64{},
		v:      map[*tensor.Tensor][]float64{},
	}
}

func (o *Adam) Step() error {
	o.step++
	biasCorr1 := 1 - math.Pow(o.beta1, float64(o.step))
	biasCorr2 := 1 - math.Pow(o.beta2, float64(o.step))
	for _, p := range o.params {
		if p == nil {
			continue
		}
		grad := p.Grad()
		if grad == nil {
			continue
		}
		g := grad.Data()
		m := o.m[p]
		if m == nil {
			m = make([]float64, len(g))
		}
		v := o.v[p]
		if v == nil {
			v = make([]float64, len(g))
		}
		update := tensor.Zeros(grad.Shape()...)
		step := make([]float64, len(g))
		for i := range g {
			m[i] = o.beta1*m[i] + (1-o.beta1)*g[i]
			v[i] = o.beta2*v[i] + (1-o.beta2)*g[i]*g[i]
			mHat := m[i] / biasCorr1
			vHat := v[i] / biasCorr2
			step[i] = mHat / (math.Sqrt(vHat) + o.eps)
		}
		o.m[p] = m
		o.v[p] = v
		if err := update.SetData(step); err != nil {
			return err
		}
		if err := p.AddScaled(update, -o.lr); err != nil {
			return err
		}
	}
	return nil
}

func (o *Adam) ZeroGrad() {
	for _, p := range o.params {
		if p != nil {
			p.ZeroGrad()
		}
	}
}
