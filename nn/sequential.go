package nn

import (
	"fmt"

	"github.com/mtyhon/ckconv/tensor"
)

type Sequential struct {
	modules []Module
}

func NewSequential(mods ...Module) *Sequential {
	copied := make([]Module, len(mods))
	copy(copied, mods)
	return &Sequential{modules: copied}
}

func (s *Sequential) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	out := input
	var err error
	for _, m := range s.modules {
		out, err = m.Forward(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Sequential) Parameters() []*tensor.Tensor {
	var params []*tensor.Tensor
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

func (s *Sequential) ZeroGrad() {
	for _, m := range s.modules {
		m.ZeroGrad()
	}
}

func (s *Sequential) Train() {
	for _, m := range s.modules {
		if t, ok := m.(Trainable); ok {
			t.Train()
		}
	}
}

func (s *Sequential) Eval() {
	for _, m := range s.modules {
		if t, ok := m.(Trainable); ok {
			t.Eval()
		}
	}
}

func (s *Sequential) StateDict(prefix string, state map[string]*tensor.Tensor) {
	for idx, mod := range s.modules {
		childPrefix := joinPrefix(prefix, fmt.Sprintf("%d", idx))
		if sm, ok := mod.(StatefulModule); ok {
			sm.StateDict(childPrefix, state)
		} else if len(mod.Parameters()) > 0 {
			captureParameters(childPrefix, mod, state)
		}
	}
}

func (s *Sequential) LoadState(prefix string, state map[string]*tensor.Tensor) error {
	for idx, mod := range s.modules {
		childPrefix := joinPrefix(prefix, fmt.Sprintf("%d", idx))
		if sm, ok := mod.(StatefulModule); ok {
			if err := sm.LoadState(childPrefix, state); err != nil {
				return err
			}
		} else if len(mod.Parameters()) > 0 {
			if err := loadParameters(childPrefix, mod, state); err != nil {
				return err
			}
		}
	}
	return nil
}
