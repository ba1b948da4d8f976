package optim

import "github.com/mtyhon/ckconv/tensor"

type SGD struct {
	params        []*tensor.Tensor
	lr            float64
	momentum      float64
	weightDecay   float64
	nesterov      bool
	velocity      map[*tensor.Tensor]*tensor.Tensor
	maxGradNorm   float64
	gradNormType  float64
	gradValueClip float64
}

type SGDConfig struct {
	LR            float64
	Momentum      float64
	WeightDecay   float64
	Nesterov      bool
	MaxGradNorm   float64
	GradNormType  float64
	GradValueClip float64
}

func NewSGD(params []*tensor.Tensor, lr, momentum float64) *SGD {
	return NewSGDWithConfig(params, SGDConfig{LR: lr, Momentum: momentum})
}

func NewSGDWithConfig(params []*tensor.Tensor, cfg SGDConfig) *SGD {
	return &SGD{
		params:        params,
		lr:            cfg.LR,
		momentum:      cfg.Momentum,
		weightDecay:   cfg.WeightDecay,
		nesterov:      cfg.Nesterov,
		velocity:      map[*tensor.Tensor]*tensor.Tensor{},
		maxGradNorm:   cfg.MaxGradNorm,
		gradNormType:  cfg.GradNormType,
		gradValueClip: cfg.GradValueClip,
	}
}

func (o *SGD) Step() error {
	if o.maxGradNorm > 0 {
		ClipGradNorm(o.params, o.maxGradNorm, o.gradNormType)
	}
	if o.gradValueClip > 0 {
		ClipGradValue(o.params, o.gradValueClip)
	}
	for _, p := range o.params {
		if p == nil {
			continue
		}
		grad := p.Grad()
		if grad == nil {
			continue
		}
		update := grad
		if o.weightDecay > 0 {
			if err := update.AddScaled(p.Detach(), o.weightDecay); err != nil {
				return err
			}
		}
		if o.momentum > 0 {
			v := o.velocity[p]
			if v == nil {
				v = tensor.Zeros(grad.Shape()...)
			}
			v.Scale(o.momentum)
			if err := v.AddScaled(update, 1.0); err != nil {
				return err
			}
			o.velocity[p] = v
			if o.nesterov {
				stepped := update.Clone()
				if err := stepped.AddScaled(v, o.momentum); err != nil {
					return err
				}
				update = stepped
			} else {
				update = v.Clone()
			}
		}
		if err := p.AddScaled(update, -o.lr); err != nil {
			return err
		}
	}
	return nil
}

func (o *SGD) ZeroGrad() {
	for _, p := range o.params {
		if p != nil {
			p.ZeroGrad()
		}
	}
}
