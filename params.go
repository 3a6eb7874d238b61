package mab

import (
	"github.com/pkg/errors"
)

// NumLevels is the number of discrete threshold values an arm may take,
// corresponding to the integers 0..100.
const NumLevels = 101

// ExplicitZero sets Optimism or MomentumBar to zero, which would otherwise
// select the default value.
const ExplicitZero = -1.0

// Params are the configuration options for the Engine. Zero-valued fields
// are replaced by the corresponding value from DefaultParams, so an empty
// Params struct is valid.
type Params struct {
	NumArms   int     // Arms in the game
	DecayRate float64 // Threshold multiplier applied on every pull

	// Resistance controls how quickly the decision policy shifts trust from
	// the OwnDecay to the JointDecay estimate as an arm accumulates pulls.
	// Larger values make switching slower.
	Resistance float64
	// Optimism is the number of standard deviations added to the mean
	// threshold when estimating an arm. Use ExplicitZero for a pure mean.
	Optimism float64

	MomentumWindow   int     // Turns inspected for opponent momentum
	MomentumMinPulls int     // Opponent pulls within the window to follow an arm
	MomentumBar      float64 // Untilted estimate an arm must exceed to be followed; see ExplicitZero

	StaleWindow int // Turns inspected for single opponent pulls
	SilenceLag  int // Turns after which an unrepeated opponent pull is a failure
}

// DefaultParams returns the parameters used in competition play.
func DefaultParams() Params {
	return Params{
		NumArms:          100,
		DecayRate:        0.97,
		Resistance:       150,
		Optimism:         1.0,
		MomentumWindow:   10,
		MomentumMinPulls: 2,
		MomentumBar:      25,
		StaleWindow:      101,
		SilenceLag:       102,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.NumArms == 0 {
		p.NumArms = d.NumArms
	}
	if p.DecayRate == 0 {
		p.DecayRate = d.DecayRate
	}
	if p.Resistance == 0 {
		p.Resistance = d.Resistance
	}
	if p.Optimism == 0 {
		p.Optimism = d.Optimism
	} else if p.Optimism == ExplicitZero {
		p.Optimism = 0
	}
	if p.MomentumWindow == 0 {
		p.MomentumWindow = d.MomentumWindow
	}
	if p.MomentumMinPulls == 0 {
		p.MomentumMinPulls = d.MomentumMinPulls
	}
	if p.MomentumBar == 0 {
		p.MomentumBar = d.MomentumBar
	} else if p.MomentumBar == ExplicitZero {
		p.MomentumBar = 0
	}
	if p.StaleWindow == 0 {
		p.StaleWindow = d.StaleWindow
	}
	if p.SilenceLag == 0 {
		p.SilenceLag = d.SilenceLag
	}

	return p
}

// Validate checks that the (defaulted) parameters describe a playable engine.
func (p Params) Validate() error {
	p = p.withDefaults()
	switch {
	case p.NumArms < 1:
		return errors.Errorf("invalid number of arms: %d", p.NumArms)
	case p.DecayRate <= 0 || p.DecayRate > 1:
		return errors.Errorf("decay rate must be in (0, 1], got %v", p.DecayRate)
	case p.Resistance < 0:
		return errors.Errorf("resistance must be positive, got %v", p.Resistance)
	case p.Optimism < 0:
		return errors.Errorf("optimism must be non-negative, got %v", p.Optimism)
	case p.MomentumBar < 0:
		return errors.Errorf("momentum bar must be non-negative, got %v", p.MomentumBar)
	case p.MomentumWindow < 1 || p.StaleWindow < 1:
		return errors.Errorf("look-back windows must be positive: momentum=%d stale=%d",
			p.MomentumWindow, p.StaleWindow)
	case p.MomentumMinPulls < 1:
		return errors.Errorf("momentum pull threshold must be positive, got %d", p.MomentumMinPulls)
	case p.SilenceLag < 2:
		return errors.Errorf("silence lag must be at least 2 turns, got %d", p.SilenceLag)
	}

	return nil
}
