package tensor

import (
	"math"
	"testing"
)

func floatsAlmostEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestMulBackward(t *testing.T) {
	a := MustNew([]float64{1, 2, 3}, 3)
	b := MustNew([]float64{4, 5, 6}, 3)
	a.SetRequiresGrad(true)
	b.SetRequiresGrad(true)
	c, err := Mul(a, b)
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	if !floatsAlmostEqual(c.Data(), []float64{4, 10, 18}, 1e-12) {
		t.Fatalf("unexpected product %v", c.Data())
	}
	if err := Sum(c).Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	if !floatsAlmostEqual(a.Grad().Data(), []float64{4, 5, 6}, 1e-12) {
		t.Fatalf("grad of a = %v", a.Grad().Data())
	}
	if !floatsAlmostEqual(b.Grad().Data(), []float64{1, 2, 3}, 1e-12) {
		t.Fatalf("grad of b = %v", b.Grad().Data())
	}
}

func TestScaleByGradients(t *testing.T) {
	x := MustNew([]float64{1, 2, 3}, 3)
	s := Full(2, 1)
	x.SetRequiresGrad(true)
	s.SetRequiresGrad(true)
	out, err := ScaleBy(x, s)
	if err != nil {
		t.Fatalf("scaleBy: %v", err)
	}
	if !floatsAlmostEqual(out.Data(), []float64{2, 4, 6}, 1e-12) {
		t.Fatalf("unexpected output %v", out.Data())
	}
	if err := Sum(out).Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	if !floatsAlmostEqual(x.Grad().Data(), []float64{2, 2, 2}, 1e-12) {
		t.Fatalf("grad of x = %v", x.Grad().Data())
	}
	if !floatsAlmostEqual(s.Grad().Data(), []float64{6}, 1e-12) {
		t.Fatalf("grad of s = %v", s.Grad().Data())
	}
}

func TestScaleByRejectsNonScalar(t *testing.T) {
	x := MustNew([]float64{1, 2}, 2)
	if _, err := ScaleBy(x, MustNew([]float64{1, 2}, 2)); err == nil {
		t.Fatal("expected error for non-scalar scale")
	}
}

func TestMulScalarBackward(t *testing.T) {
	x := MustNew([]float64{1, -2}, 2)
	x.SetRequiresGrad(true)
	out := MulScalar(x, 3)
	if !floatsAlmostEqual(out.Data(), []float64{3, -6}, 1e-12) {
		t.Fatalf("unexpected output %v", out.Data())
	}
	if err := Sum(out).Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	if !floatsAlmostEqual(x.Grad().Data(), []float64{3, 3}, 1e-12) {
		t.Fatalf("grad = %v", x.Grad().Data())
	}
}

func TestMeanBackward(t *testing.T) {
	x := MustNew([]float64{2, 4, 6, 8}, 4)
	x.SetRequiresGrad(true)
	m := Mean(x)
	if !floatsAlmostEqual(m.Data(), []float64{5}, 1e-12) {
		t.Fatalf("mean = %v", m.Data())
	}
	if err := m.Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	if !floatsAlmostEqual(x.Grad().Data(), []float64{0.25, 0.25, 0.25, 0.25}, 1e-12) {
		t.Fatalf("grad = %v", x.Grad().Data())
	}
}

func TestSinAndSwish(t *testing.T) {
	x := MustNew([]float64{0, math.Pi / 2}, 2)
	x.SetRequiresGrad(true)
	y := Sin(x)
	if !floatsAlmostEqual(y.Data(), []float64{0, 1}, 1e-12) {
		t.Fatalf("sin = %v", y.Data())
	}
	if err := Sum(y).Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	if !floatsAlmostEqual(x.Grad().Data(), []float64{1, 0}, 1e-12) {
		t.Fatalf("sin grad = %v", x.Grad().Data())
	}

	z := MustNew([]float64{0, 10}, 2)
	sw := Swish(z)
	got := sw.Data()
	if math.Abs(got[0]) > 1e-12 {
		t.Fatalf("swish(0) = %v", got[0])
	}
	if math.Abs(got[1]-10/(1+math.Exp(-10))) > 1e-9 {
		t.Fatalf("swish(10) = %v", got[1])
	}
}

func TestLinspace(t *testing.T) {
	lin, err := Linspace(-1, 1, 5)
	if err != nil {
		t.Fatalf("linspace: %v", err)
	}
	if !floatsAlmostEqual(lin.Data(), []float64{-1, -0.5, 0, 0.5, 1}, 1e-12) {
		t.Fatalf("linspace = %v", lin.Data())
	}
}
