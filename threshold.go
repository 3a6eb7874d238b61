package mab

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// thresholdModel holds, for every arm, a probability distribution over the
// arm's hidden threshold.
//
// Decay is applied to the support values rather than the weights: the i-th
// weight always describes the i-th original threshold level, whatever that
// level is worth after the pulls seen so far. This keeps the weights index
// stable and avoids rebinning mass on every pull.
type thresholdModel struct {
	// jointDecay is true if opponent pulls also decay the support.
	jointDecay bool

	supports [][]float64 // arm -> current value of each threshold level
	weights  [][]float64 // arm -> probability of each threshold level
}

func newThresholdModel(nArms int, jointDecay bool) *thresholdModel {
	m := &thresholdModel{
		jointDecay: jointDecay,
		supports:   make([][]float64, nArms),
		weights:    make([][]float64, nArms),
	}

	for arm := 0; arm < nArms; arm++ {
		m.supports[arm] = make([]float64, NumLevels)
		floats.Span(m.supports[arm], 0, NumLevels-1)
		m.weights[arm] = uniformDist(NumLevels)
	}

	return m
}

// decay scales every support value of the arm by the given rate.
func (m *thresholdModel) decay(arm int, rate float64) {
	floats.Scale(rate, m.supports[arm])
}

// observe performs a permanent Bayesian update of the arm's distribution.
func (m *thresholdModel) observe(arm int, lik likelihood) {
	tilt(m.weights[arm], m.supports[arm], lik)
}

// correction returns the factor undoing one decay step of this model's
// support, for reasoning about an opponent pull made on an earlier turn.
// Opponent pulls do not move the OwnDecay support, so it needs none.
func (m *thresholdModel) correction(rate float64) float64 {
	if m.jointDecay {
		return rate
	}

	return 1.0
}

// likelihood maps a support value to an unnormalized likelihood.
type likelihood func(s float64) float64

// level returns the discrete threshold level of a support value.
// Levels are clamped to the top of the range so that a correction for
// decay can never produce a negative failure likelihood.
func level(s float64) float64 {
	return math.Min(math.Ceil(s), NumLevels-1)
}

// successLikelihood is proportional to the probability of a successful
// pull, given the threshold as it stood one decay step per correction ago.
func successLikelihood(correction float64) likelihood {
	return func(s float64) float64 {
		return level(s / correction)
	}
}

// failureLikelihood is proportional to the probability of a failed pull.
// It is strictly positive over the whole support.
func failureLikelihood(correction float64) likelihood {
	return func(s float64) float64 {
		return NumLevels - level(s/correction)
	}
}

// tilt multiplies the weights by the likelihood of each support value and
// renormalizes them in place.
func tilt(weights, supports []float64, lik likelihood) {
	for i, s := range supports {
		weights[i] *= lik(s)
	}

	normalize(weights)
}

// tiltPow multiplies the weights by level(s)^n and renormalizes them in place,
// treating each of n recent pulls as a success. The product is formed in log
// space relative to its largest term, so any n is safe from overflow. If no
// support point can explain a success the weights are left unchanged.
func tiltPow(weights, supports []float64, n int) {
	best := math.Inf(-1)
	for i, s := range supports {
		if weights[i] > 0 && level(s) > 0 {
			best = math.Max(best, logPow(weights[i], s, n))
		}
	}

	if math.IsInf(best, -1) {
		return
	}

	for i, s := range supports {
		if weights[i] > 0 && level(s) > 0 {
			weights[i] = math.Exp(logPow(weights[i], s, n) - best)
		} else {
			weights[i] = 0
		}
	}

	normalize(weights)
}

func logPow(w, s float64, n int) float64 {
	return math.Log(w) + float64(n)*math.Log(level(s))
}

func normalize(weights []float64) {
	total := floats.Sum(weights)
	if !(total > 0) || math.IsInf(total, 0) {
		panic(fmt.Errorf("cannot normalize threshold distribution with total mass %v: %v",
			total, weights))
	}

	floats.Scale(1.0/total, weights)
}

func uniformDist(n int) []float64 {
	result := make([]float64, n)
	floats.AddConst(1.0/float64(n), result)
	return result
}
