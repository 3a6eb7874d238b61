package mab

import (
	"math"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
)

// Choose returns the arm with the highest blended estimate, breaking ties
// uniformly at random.
func (e *Engine) Choose() int {
	estimates := e.BlendedEstimates()
	best := floats.Max(estimates)

	var candidates []int
	for arm, v := range estimates {
		if v == best {
			candidates = append(candidates, arm)
		}
	}

	arm := candidates[e.rng.Intn(len(candidates))]
	glog.V(3).Infof("[turn=%d] chose arm %d (estimate=%.3f, %d candidates)",
		e.history.Len(), arm, best, len(candidates))
	return arm
}

// BlendedEstimates combines the OwnDecay and JointDecay estimates of every
// arm, trusting JointDecay more as the arm accumulates pulls.
func (e *Engine) BlendedEstimates() []float64 {
	own := e.Estimates(OwnDecay)
	joint := e.Estimates(JointDecay)

	blended := make([]float64, len(own))
	for arm := range blended {
		w := e.Weight(arm)
		blended[arm] = (1-w)*own[arm] + w*joint[arm]
	}

	return blended
}

// Weight returns the weight given to the JointDecay estimate of the arm,
// ramping linearly from 0 with no pulls to 1 at Resistance total pulls.
func (e *Engine) Weight(arm int) float64 {
	n := float64(e.history.totalPulls(arm))
	return math.Min(n, e.params.Resistance) / e.params.Resistance
}
