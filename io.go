package mab

import (
	"encoding/gob"
	"io"
	"math/rand"

	"github.com/pkg/errors"
)

// engineState is the serialized form of an Engine.
type engineState struct {
	Params   Params
	Supports [numKinds][][]float64
	Weights  [numKinds][][]float64
	Mine     []int
	Theirs   []int
	Results  []int
	Reward   int
}

// LoadEngine restores an Engine checkpointed with MarshalTo. The random
// source is not part of the checkpoint; subsequent choices are drawn from rng.
func LoadEngine(r io.Reader, rng *rand.Rand) (*Engine, error) {
	dec := gob.NewDecoder(r)
	var state engineState
	if err := dec.Decode(&state); err != nil {
		return nil, errors.Wrap(err, "decoding engine state")
	}

	e, err := NewEngine(state.Params, rng)
	if err != nil {
		return nil, err
	}

	n := len(state.Mine)
	if len(state.Theirs) != n || len(state.Results) != n {
		return nil, errors.Errorf("corrupt history: %d/%d/%d entries",
			n, len(state.Theirs), len(state.Results))
	}

	for k, m := range e.models {
		if len(state.Supports[k]) != e.params.NumArms || len(state.Weights[k]) != e.params.NumArms {
			return nil, errors.Errorf("%v model has %d/%d arms, expected %d", Kind(k),
				len(state.Supports[k]), len(state.Weights[k]), e.params.NumArms)
		}

		for arm := 0; arm < e.params.NumArms; arm++ {
			if len(state.Supports[k][arm]) != NumLevels || len(state.Weights[k][arm]) != NumLevels {
				return nil, errors.Errorf("%v model arm %d has %d/%d levels, expected %d", Kind(k),
					arm, len(state.Supports[k][arm]), len(state.Weights[k][arm]), NumLevels)
			}
		}

		m.supports = state.Supports[k]
		m.weights = state.Weights[k]
	}

	for t := 0; t < n; t++ {
		if state.Mine[t] < 0 || state.Mine[t] >= e.params.NumArms ||
			state.Theirs[t] < 0 || state.Theirs[t] >= e.params.NumArms {
			return nil, errors.Errorf("corrupt history at turn %d: arms %d, %d",
				t, state.Mine[t], state.Theirs[t])
		}

		if state.Results[t] != 0 && state.Results[t] != 1 {
			return nil, errors.Errorf("corrupt history at turn %d: result %d", t, state.Results[t])
		}

		e.history.add(state.Mine[t], state.Theirs[t], state.Results[t])
	}

	e.reward = state.Reward
	return e, nil
}

// MarshalTo writes a checkpoint of the Engine's beliefs and history to w.
func (e *Engine) MarshalTo(w io.Writer) error {
	state := engineState{
		Params:  e.params,
		Mine:    e.history.mine,
		Theirs:  e.history.theirs,
		Results: e.history.results,
		Reward:  e.reward,
	}

	for k, m := range e.models {
		state.Supports[k] = m.supports
		state.Weights[k] = m.weights
	}

	enc := gob.NewEncoder(w)
	return errors.Wrap(enc.Encode(&state), "encoding engine state")
}
