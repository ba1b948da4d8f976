package loss

import (
	"math"
	"testing"

	"github.com/mtyhon/ckconv/tensor"
)

func TestMSEValue(t *testing.T) {
	pred := tensor.MustNew([]float64{1, 2, 3}, 3)
	target := tensor.MustNew([]float64{1, 0, 0}, 3)
	l, err := MSE(pred, target)
	if err != nil {
		t.Fatalf("mse: %v", err)
	}
	want := (0.0 + 4 + 9) / 3
	if math.Abs(l.Data()[0]-want) > 1e-12 {
		t.Fatalf("mse = %v want %v", l.Data()[0], want)
	}
}

func TestMSEBackward(t *testing.T) {
	pred := tensor.MustNew([]float64{2, -1}, 2)
	pred.SetRequiresGrad(true)
	target := tensor.Zeros(2)
	l, err := MSE(pred, target)
	if err != nil {
		t.Fatalf("mse: %v", err)
	}
	if err := l.Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	// d/dp mean((p-t)^2) = 2(p-t)/n
	grad := pred.Grad().Data()
	if math.Abs(grad[0]-2) > 1e-12 || math.Abs(grad[1]+1) > 1e-12 {
		t.Fatalf("grad = %v", grad)
	}
}

func TestMSEShapeMismatch(t *testing.T) {
	if _, err := MSE(tensor.Zeros(2), tensor.Zeros(3)); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}
