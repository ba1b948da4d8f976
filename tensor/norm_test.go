package tensor

import (
	"math"
	"testing"
)

func TestGroupNormNormalizesPerSample(t *testing.T) {
	Seed(5)
	input := Randn(3, 2, 8)
	input.Scale(4)
	out, err := GroupNorm(input, nil, nil, 1e-5)
	if err != nil {
		t.Fatalf("group norm: %v", err)
	}
	data := out.Data()
	groupSize := 2 * 8
	for b := 0; b < 3; b++ {
		sum, sq := 0.0, 0.0
		for j := 0; j < groupSize; j++ {
			v := data[b*groupSize+j]
			sum += v
			sq += v * v
		}
		mean := sum / float64(groupSize)
		variance := sq/float64(groupSize) - mean*mean
		if math.Abs(mean) > 1e-9 {
			t.Fatalf("sample %d mean = %v", b, mean)
		}
		if math.Abs(variance-1) > 1e-3 {
			t.Fatalf("sample %d variance = %v", b, variance)
		}
	}
}

func TestGroupNormAffineGrads(t *testing.T) {
	Seed(6)
	input := Randn(2, 3, 4)
	weight := Ones(3)
	bias := Zeros(3)
	input.SetRequiresGrad(true)
	weight.SetRequiresGrad(true)
	bias.SetRequiresGrad(true)
	out, err := GroupNorm(input, weight, bias, 1e-5)
	if err != nil {
		t.Fatalf("group norm: %v", err)
	}
	if err := Sum(out).Backward(); err != nil {
		t.Fatalf("backward: %v", err)
	}
	if input.Grad() == nil || weight.Grad() == nil || bias.Grad() == nil {
		t.Fatal("missing gradients")
	}
	// d(out)/d(bias_c) counts every position of channel c.
	if !floatsAlmostEqual(bias.Grad().Data(), []float64{8, 8, 8}, 1e-9) {
		t.Fatalf("bias grad = %v", bias.Grad().Data())
	}
}

func TestBatchNormTrainingStatistics(t *testing.T) {
	Seed(7)
	input := Randn(4, 2, 16)
	input.Scale(3)
	runningMean := Zeros(2)
	runningVar := Ones(2)
	out, err := BatchNorm1D(input, runningMean, runningVar, nil, nil, 0.1, 1e-5, true)
	if err != nil {
		t.Fatalf("batch norm: %v", err)
	}
	data := out.Data()
	for c := 0; c < 2; c++ {
		sum, sq := 0.0, 0.0
		count := 0
		for n := 0; n < 4; n++ {
			base := (n*2 + c) * 16
			for w := 0; w < 16; w++ {
				v := data[base+w]
				sum += v
				sq += v * v
				count++
			}
		}
		mean := sum / float64(count)
		variance := sq/float64(count) - mean*mean
		if math.Abs(mean) > 1e-9 || math.Abs(variance-1) > 1e-3 {
			t.Fatalf("channel %d mean %v variance %v", c, mean, variance)
		}
	}
	if floatsAlmostEqual(runningMean.Data(), []float64{0, 0}, 1e-12) {
		t.Fatal("running mean was not updated")
	}
}

func TestBatchNormEvalUsesRunningStats(t *testing.T) {
	input := MustNew([]float64{1, 2, 3, 4}, 1, 1, 4)
	runningMean := MustNew([]float64{2}, 1)
	runningVar := MustNew([]float64{4}, 1)
	out, err := BatchNorm1D(input, runningMean, runningVar, nil, nil, 0.1, 0, false)
	if err != nil {
		t.Fatalf("batch norm: %v", err)
	}
	invStd := 1 / math.Sqrt(4+1e-5)
	want := []float64{-1 * invStd, 0, 1 * invStd, 2 * invStd}
	if !floatsAlmostEqual(out.Data(), want, 1e-9) {
		t.Fatalf("got %v want %v", out.Data(), want)
	}
}
