package tensor

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadTensors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	in := map[string]*Tensor{
		"weight": MustNew([]float64{1, -2, 3.5, 0}, 2, 2),
		"omega":  MustNew([]float64{30}, 1),
	}
	if err := SaveTensors(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadTensors(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 tensors, got %d", len(out))
	}
	for name, orig := range in {
		got, ok := out[name]
		if !ok {
			t.Fatalf("missing %s", name)
		}
		if !floatsAlmostEqual(got.Data(), orig.Data(), 0) {
			t.Fatalf("%s data mismatch", name)
		}
		gotShape := got.Shape()
		for i, dim := range orig.Shape() {
			if gotShape[i] != dim {
				t.Fatalf("%s shape mismatch", name)
			}
		}
	}
}

func TestSaveTensorsRejectsEmpty(t *testing.T) {
	if err := SaveTensors(filepath.Join(t.TempDir(), "x.json"), nil); err == nil {
		t.Fatal("expected error for empty set")
	}
}
