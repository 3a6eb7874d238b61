package mab

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Estimates returns an optimistic estimate of every arm's threshold under
// the given model: the mean plus Optimism standard deviations of the arm's
// distribution, after tilting it toward the opponent's recent behavior.
//
// Tilting is applied to a working copy of the distribution and is never
// written back to the stored beliefs.
func (e *Engine) Estimates(k Kind) []float64 {
	m := e.models[k]
	momentum := e.history.recentOpponentPulls(e.params.MomentumWindow)
	stale := e.history.recentOpponentPulls(e.params.StaleWindow)
	if e.history.Len() > 0 {
		// The opponent may simply not have had a chance to repeat its last pull.
		_, theirs, _ := e.history.last()
		stale[theirs] = 0
	}

	estimates := make([]float64, e.params.NumArms)
	for arm := range estimates {
		estimates[arm] = e.tiltedEstimate(m, arm, momentum[arm], stale[arm] == 1)
	}

	return estimates
}

// tiltedEstimate estimates a single arm.
//
// Each of the opponent's recent pulls is treated as a success, but only
// for arms that already look promising, so that an opponent cannot bait
// us into an arm we know is weak. A single recent pull that the opponent
// did not repeat is treated as a failure.
func (e *Engine) tiltedEstimate(m *thresholdModel, arm, recentPulls int, staleSingle bool) float64 {
	supports := m.supports[arm]
	work := e.pool.copyOf(m.weights[arm])
	defer e.pool.put(work)

	if recentPulls >= e.params.MomentumMinPulls &&
		e.optimisticEstimate(supports, m.weights[arm]) > e.params.MomentumBar {
		tiltPow(work, supports, recentPulls)
	}

	if staleSingle {
		tilt(work, supports, failureLikelihood(1.0))
	}

	return e.optimisticEstimate(supports, work)
}

// untiltedEstimate estimates a single arm from its stored distribution.
func (e *Engine) untiltedEstimate(k Kind, arm int) float64 {
	m := e.models[k]
	return e.optimisticEstimate(m.supports[arm], m.weights[arm])
}

func (e *Engine) optimisticEstimate(supports, weights []float64) float64 {
	mean, variance := stat.PopMeanVariance(supports, weights)
	return mean + e.params.Optimism*math.Sqrt(math.Max(variance, 0))
}
