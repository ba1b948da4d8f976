package nn

import (
	"errors"
	"fmt"

	"github.com/mtyhon/ckconv/tensor"
)

// Module is a composable unit of a network: a forward computation plus
// the trainable tensors behind it.
type Module interface {
	Forward(input *tensor.Tensor) (*tensor.Tensor, error)
	Parameters() []*tensor.Tensor
	ZeroGrad()
}

// StatefulModule adds named-state checkpointing on top of Module.
type StatefulModule interface {
	Module
	StateDict(prefix string, state map[string]*tensor.Tensor)
	LoadState(prefix string, state map[string]*tensor.Tensor) error
}

// Trainable is implemented by modules whose forward pass differs
// between training and evaluation (dropout, batch norm, CKConv).
type Trainable interface {
	Train()
	Eval()
}

func ZeroGradAll(mods ...Module) {
	for _, m := range mods {
		if m != nil {
			m.ZeroGrad()
		}
	}
}

// SaveModule writes a module's state to path.
func SaveModule(path string, mod Module) error {
	if mod == nil {
		return errors.New("SaveModule requires non-nil module")
	}
	state := make(map[string]*tensor.Tensor)
	if sm, ok := mod.(StatefulModule); ok {
		sm.StateDict("", state)
	} else {
		captureParameters("", mod, state)
	}
	if len(state) == 0 {
		return errors.New("module has no state to save")
	}
	return tensor.SaveTensors(path, state)
}

// LoadModule restores a module's state from path.
func LoadModule(path string, mod Module) error {
	if mod == nil {
		return errors.New("LoadModule requires non-nil module")
	}
	state, err := tensor.LoadTensors(path)
	if err != nil {
		return err
	}
	if sm, ok := mod.(StatefulModule); ok {
		return sm.LoadState("", state)
	}
	return loadParameters("", mod, state)
}

func joinPrefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}

func captureParameters(prefix string, mod Module, state map[string]*tensor.Tensor) {
	for idx, p := range mod.Parameters() {
		if p == nil {
			continue
		}
		state[joinPrefix(prefix, fmt.Sprintf("param_%d", idx))] = p.Clone()
	}
}

func loadParameters(prefix string, mod Module, state map[string]*tensor.Tensor) error {
	for idx, p := range mod.Parameters() {
		if p == nil {
			continue
		}
		key := joinPrefix(prefix, fmt.Sprintf("param_%d", idx))
		t, ok := state[key]
		if !ok {
			return fmt.Errorf("missing parameter %s", key)
		}
		if err := tensor.CopyInto(p, t); err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
	}
	return nil
}
