package nn

import (
	"testing"

	"github.com/mtyhon/ckconv/tensor"
)

func TestLinear1dPointwise(t *testing.T) {
	l := NewLinear1d(2, 1, true)
	if err := l.SetWeight([]float64{2, -1}); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	if err := l.SetBias([]float64{0.5}); err != nil {
		t.Fatalf("set bias: %v", err)
	}
	// Two channels over three positions.
	x := tensor.MustNew([]float64{
		1, 2, 3,
		4, 5, 6,
	}, 1, 2, 3)
	out, err := l.Forward(x)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	want := []float64{2*1 - 4 + 0.5, 2*2 - 5 + 0.5, 2*3 - 6 + 0.5}
	if !floatsAlmostEqual(out.Data(), want, 1e-12) {
		t.Fatalf("got %v want %v", out.Data(), want)
	}
}

func TestWeightNormLinear1dEffectiveWeight(t *testing.T) {
	l := NewWeightNormLinear1d(3, 2, false)
	values := []float64{1, -2, 2, 0.5, 0.5, -1}
	if err := l.SetWeight(values); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	if !floatsAlmostEqual(l.EffectiveWeight().Data(), values, 1e-9) {
		t.Fatalf("effective weight = %v", l.EffectiveWeight().Data())
	}
	if len(l.Parameters()) != 2 {
		t.Fatalf("expected v and g parameters, got %d", len(l.Parameters()))
	}
}

func TestWeightNormLinear1dGradientsReachDirectionAndGain(t *testing.T) {
	l := NewWeightNormLinear1d(1, 2, true)
	x := tensor.MustNew([]float64{1, -1, 2}, 1, 1, 3)
	out, err := l.Forward(x)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if err := tensor.Sum(out).Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	for i, p := range l.Parameters() {
		if p.Grad() == nil {
			t.Fatalf("parameter %d has no gradient", i)
		}
	}
}

func TestLinear1dStateDictRoundTrip(t *testing.T) {
	l := NewWeightNormLinear1d(2, 2, true)
	state := map[string]*tensor.Tensor{}
	l.StateDict("", state)
	for _, key := range []string{"weight_v", "weight_g", "bias"} {
		if _, ok := state[key]; !ok {
			t.Fatalf("state dict missing %s", key)
		}
	}
	clone := NewWeightNormLinear1d(2, 2, true)
	if err := clone.LoadState("", state); err != nil {
		t.Fatalf("load state: %v", err)
	}
	x := tensor.MustNew([]float64{1, 2, 3, 4, 5, 6}, 1, 2, 3)
	a, err := l.Forward(x)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	b, err := clone.Forward(x)
	if err != nil {
		t.Fatalf("clone forward: %v", err)
	}
	if !floatsAlmostEqual(a.Data(), b.Data(), 1e-12) {
		t.Fatal("loaded layer disagrees with original")
	}
}
