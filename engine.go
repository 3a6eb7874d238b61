package mab

import (
	"fmt"
	"math/rand"

	"github.com/golang/glog"
)

// Engine plays one side of a single match. It owns all of the match's
// belief state and is not safe for concurrent use; run one Engine per match.
type Engine struct {
	params Params
	rng    *rand.Rand

	// Indexed by Kind.
	models [numKinds]*thresholdModel

	history history
	reward  int // Cumulative reward at the last observation.

	pool *beliefPool
}

// NewEngine creates a new Engine with uniform beliefs over every arm.
// All random choices are drawn from rng.
func NewEngine(params Params, rng *rand.Rand) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	params = params.withDefaults()
	return &Engine{
		params: params,
		rng:    rng,
		models: [numKinds]*thresholdModel{
			OwnDecay:   newThresholdModel(params.NumArms, false),
			JointDecay: newThresholdModel(params.NumArms, true),
		},
		history: newHistory(params.NumArms),
		pool:    &beliefPool{},
	}, nil
}

// Params returns the (defaulted) parameters of the Engine.
func (e *Engine) Params() Params {
	return e.params
}

// Turns returns the number of turns observed so far.
func (e *Engine) Turns() int {
	return e.history.Len()
}

// Act implements Agent.
func (e *Engine) Act(obs Observation) int {
	if obs.Step == 0 {
		return e.rng.Intn(e.params.NumArms)
	}

	result := obs.Reward - e.reward
	if result != 0 && result != 1 {
		panic(fmt.Errorf("reward moved from %d to %d in a single turn at step %d",
			e.reward, obs.Reward, obs.Step))
	}

	e.reward = obs.Reward
	e.Observe(obs.MyLastAction(), obs.OpponentLastAction(), result == 1)
	return e.Choose()
}

// Observe records one completed turn and permanently updates the beliefs.
func (e *Engine) Observe(mine, theirs int, success bool) {
	e.checkArm(mine)
	e.checkArm(theirs)

	result := 0
	if success {
		result = 1
	}

	e.history.add(mine, theirs, result)
	e.update()
}

func (e *Engine) checkArm(arm int) {
	if arm < 0 || arm >= e.params.NumArms {
		panic(fmt.Errorf("arm %d out of range [0, %d)", arm, e.params.NumArms))
	}
}

// update revises the beliefs with the latest turn. All likelihoods are
// evaluated against the support as it stood during the turns they describe,
// so this turn's decay is applied last.
func (e *Engine) update() {
	mine, theirs, result := e.history.last()
	glog.V(3).Infof("[turn=%d] mine=%d theirs=%d result=%d",
		e.history.Len()-1, mine, theirs, result)

	ownOutcome := failureLikelihood(1.0)
	if result == 1 {
		ownOutcome = successLikelihood(1.0)
	}

	for _, m := range e.models {
		m.observe(mine, ownOutcome)
	}

	// An opponent that immediately repeats a new arm most likely succeeded on it.
	if arm, ok := e.history.repeatedFirstPull(); ok {
		glog.V(2).Infof("[turn=%d] opponent repeated arm %d: inferring success",
			e.history.Len()-1, arm)
		for _, m := range e.models {
			m.observe(arm, successLikelihood(m.correction(e.params.DecayRate)))
		}
	}

	// An opponent that never returns to an arm most likely failed on it.
	if arm, ok := e.history.abandonedPull(e.params.SilenceLag); ok {
		glog.V(2).Infof("[turn=%d] opponent abandoned arm %d: inferring failure",
			e.history.Len()-1, arm)
		for _, m := range e.models {
			m.observe(arm, failureLikelihood(m.correction(e.params.DecayRate)))
		}
	}

	for _, m := range e.models {
		m.decay(mine, e.params.DecayRate)
		if m.jointDecay {
			m.decay(theirs, e.params.DecayRate)
		}
	}
}

// Beliefs returns copies of the support values and probability weights
// of the given arm's threshold distribution.
func (e *Engine) Beliefs(k Kind, arm int) (supports, weights []float64) {
	m := e.models[k]
	supports = append([]float64(nil), m.supports[arm]...)
	weights = append([]float64(nil), m.weights[arm]...)
	return supports, weights
}

// PullCounts returns the number of times we and the opponent have pulled the arm.
func (e *Engine) PullCounts(arm int) (mine, theirs int) {
	return e.history.myCounts[arm], e.history.opCounts[arm]
}
