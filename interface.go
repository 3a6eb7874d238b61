// Package mab implements a belief-tracking decision engine for a repeated
// two-player bandit game in which every arm has a hidden success threshold
// that decays each time it is pulled.
//
// A player observes both players' arms each turn but only its own reward.
// The Engine keeps a discrete Bayesian belief over every arm's threshold,
// infers the opponent's hidden outcomes from how it plays, and pulls the
// arm with the highest optimistic estimate.
package mab

import (
	"fmt"
)

// Kind selects one of the two threshold models maintained for every arm.
// The models differ only in which pulls are assumed to decay a threshold.
type Kind int

const (
	// OwnDecay assumes only our own pulls decay an arm's threshold.
	OwnDecay Kind = iota
	// JointDecay assumes pulls by either player decay an arm's threshold.
	JointDecay

	numKinds = 2
)

var kindStr = [...]string{
	"own",
	"joint",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindStr) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindStr[k]
}

// Observation is the per-turn input supplied by the game runtime,
// from the point of view of the player identified by AgentIndex.
type Observation struct {
	// Step is the 0-based turn index.
	Step int
	// AgentIndex is 0 or 1.
	AgentIndex int
	// LastActions holds the arm each player pulled on the previous turn.
	// It is only meaningful when Step >= 1.
	LastActions [2]int
	// Reward is the player's cumulative reward so far.
	Reward int
}

// MyLastAction returns the arm this player pulled on the previous turn.
func (o Observation) MyLastAction() int {
	return o.LastActions[o.AgentIndex]
}

// OpponentLastAction returns the arm the opponent pulled on the previous turn.
func (o Observation) OpponentLastAction() int {
	return o.LastActions[1-o.AgentIndex]
}

// Agent selects an arm to pull on every turn of a match.
type Agent interface {
	// Act is called exactly once per turn and returns an arm in [0, NumArms).
	Act(obs Observation) int
}
