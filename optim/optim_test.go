package optim

import (
	"math"
	"testing"

	"github.com/mtyhon/ckconv/tensor"
)

func quadraticStep(t *testing.T, w *tensor.Tensor) *tensor.Tensor {
	t.Helper()
	l := tensor.Mean(tensor.Pow(w, 2))
	if err := l.Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	return l
}

func TestSGDConvergesOnQuadratic(t *testing.T) {
	w := tensor.MustNew([]float64{5}, 1)
	w.SetRequiresGrad(true)
	opt := NewSGD([]*tensor.Tensor{w}, 0.1, 0)
	for i := 0; i < 100; i++ {
		opt.ZeroGrad()
		quadraticStep(t, w)
		if err := opt.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if math.Abs(w.Data()[0]) > 1e-6 {
		t.Fatalf("w = %v after descent", w.Data()[0])
	}
}

func TestSGDMomentumAcceleratesFirstSteps(t *testing.T) {
	plain := tensor.MustNew([]float64{5}, 1)
	plain.SetRequiresGrad(true)
	heavy := tensor.MustNew([]float64{5}, 1)
	heavy.SetRequiresGrad(true)
	optPlain := NewSGD([]*tensor.Tensor{plain}, 0.01, 0)
	optHeavy := NewSGD([]*tensor.Tensor{heavy}, 0.01, 0.9)
	for i := 0; i < 5; i++ {
		optPlain.ZeroGrad()
		quadraticStep(t, plain)
		if err := optPlain.Step(); err != nil {
			t.Fatalf("plain step: %v", err)
		}
		optHeavy.ZeroGrad()
		quadraticStep(t, heavy)
		if err := optHeavy.Step(); err != nil {
			t.Fatalf("heavy step: %v", err)
		}
	}
	if !(heavy.Data()[0] < plain.Data()[0]) {
		t.Fatalf("momentum did not accelerate: plain %v heavy %v", plain.Data()[0], heavy.Data()[0])
	}
}

func TestAdamMovesAgainstGradient(t *testing.T) {
	w := tensor.MustNew([]float64{5}, 1)
	w.SetRequiresGrad(true)
	opt := NewAdam([]*tensor.Tensor{w}, 0.1, 0.9, 0.999, 1e-8)
	for i := 0; i < 200; i++ {
		opt.ZeroGrad()
		quadraticStep(t, w)
		if err := opt.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if math.Abs(w.Data()[0]) > 0.5 {
		t.Fatalf("w = %v after adam descent", w.Data()[0])
	}
}

func TestClipGradValueClampsUpdates(t *testing.T) {
	w := tensor.MustNew([]float64{100}, 1)
	w.SetRequiresGrad(true)
	opt := NewSGDWithConfig([]*tensor.Tensor{w}, SGDConfig{LR: 1, GradValueClip: 0.5})
	quadraticStep(t, w)
	if err := opt.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	// Raw gradient is 200; the clipped update is at most 0.5.
	if got := w.Data()[0]; math.Abs(got-99.5) > 1e-9 {
		t.Fatalf("w = %v, expected 99.5", got)
	}
}

func TestClipGradNormRescales(t *testing.T) {
	a := tensor.MustNew([]float64{3}, 1)
	b := tensor.MustNew([]float64{4}, 1)
	a.SetRequiresGrad(true)
	b.SetRequiresGrad(true)
	s, err := tensor.Add(tensor.MulScalar(a, 3), tensor.MulScalar(b, 4))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := tensor.Sum(s).Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	norm := ClipGradNorm([]*tensor.Tensor{a, b}, 1, 2)
	if math.Abs(norm-5) > 1e-9 {
		t.Fatalf("pre-clip norm = %v", norm)
	}
	if math.Abs(a.Grad().Data()[0]-0.6) > 1e-9 || math.Abs(b.Grad().Data()[0]-0.8) > 1e-9 {
		t.Fatalf("clipped grads = %v %v", a.Grad().Data(), b.Grad().Data())
	}
}
