package nn

import (
	"path/filepath"
	"testing"

	"github.com/mtyhon/ckconv/tensor"
)

func TestSequentialForward(t *testing.T) {
	model := NewSequential(Multiply(2), Multiply(-0.5))
	x := tensor.MustNew([]float64{1, 2, 3}, 3)
	out, err := model.Forward(x)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if !floatsAlmostEqual(out.Data(), []float64{-1, -2, -3}, 1e-12) {
		t.Fatalf("got %v", out.Data())
	}
}

func TestSequentialTrainEvalPropagates(t *testing.T) {
	drop := NewDropout(0.9)
	model := NewSequential(Multiply(1), drop)
	model.Eval()
	x := tensor.Ones(1, 1, 64)
	out, err := model.Forward(x)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if !floatsAlmostEqual(out.Data(), x.Data(), 0) {
		t.Fatal("dropout active after Eval")
	}
	model.Train()
	out, err = model.Forward(x)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	zeros := 0
	for _, v := range out.Data() {
		if v == 0 {
			zeros++
		}
	}
	if zeros == 0 {
		t.Fatal("dropout inactive after Train")
	}
}

func TestSaveLoadSequential(t *testing.T) {
	tensor.Seed(71)
	model := NewSequential(NewLinear1d(2, 4, true), ReLU(), NewLearnedMultiply(0.3))
	x := tensor.Randn(1, 2, 5)
	want, err := model.Forward(x)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := SaveModule(path, model); err != nil {
		t.Fatalf("save: %v", err)
	}
	clone := NewSequential(NewLinear1d(2, 4, true), ReLU(), NewLearnedMultiply(7))
	if err := LoadModule(path, clone); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := clone.Forward(x)
	if err != nil {
		t.Fatalf("clone forward: %v", err)
	}
	if !floatsAlmostEqual(got.Data(), want.Data(), 1e-12) {
		t.Fatal("loaded model disagrees with original")
	}
}

func TestZeroGradAll(t *testing.T) {
	lm := NewLearnedMultiply(1)
	x := tensor.MustNew([]float64{1, 2}, 2)
	out, err := lm.Forward(x)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if err := tensor.Sum(out).Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	if lm.Omega0().Grad() == nil {
		t.Fatal("expected gradient")
	}
	ZeroGradAll(lm)
	if lm.Omega0().Grad() != nil {
		t.Fatal("ZeroGradAll did not clear gradients")
	}
}
