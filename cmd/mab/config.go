package main

import (
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/timpalpant/go-mab"
	"github.com/timpalpant/go-mab/game"
)

func init() {
	p := mab.DefaultParams()
	viper.SetDefault("engine.resistance", p.Resistance)
	viper.SetDefault("engine.optimism", p.Optimism)
	viper.SetDefault("engine.momentum_window", p.MomentumWindow)
	viper.SetDefault("engine.momentum_min_pulls", p.MomentumMinPulls)
	viper.SetDefault("engine.momentum_bar", p.MomentumBar)
	viper.SetDefault("engine.stale_window", p.StaleWindow)
	viper.SetDefault("engine.silence_lag", p.SilenceLag)

	cfg := game.DefaultConfig()
	viper.SetDefault("game.arms", cfg.NumArms)
	viper.SetDefault("game.steps", cfg.Steps)
	viper.SetDefault("game.decay_rate", cfg.DecayRate)
	viper.SetDefault("game.sample_resolution", cfg.SampleResolution)
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// loadConfig reads path if it exists. A missing default config is not an error.
func loadConfig(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		glog.V(1).Infof("No config file at %s, using defaults", path)
		return nil
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "reading config %s", path)
	}

	glog.Infof("Loaded config from %s", viper.ConfigFileUsed())
	return nil
}

func gameConfig() (game.Config, error) {
	cfg := game.Config{
		NumArms:          viper.GetInt("game.arms"),
		Steps:            viper.GetInt("game.steps"),
		DecayRate:        viper.GetFloat64("game.decay_rate"),
		SampleResolution: viper.GetInt("game.sample_resolution"),
	}

	return cfg, cfg.Validate()
}

// engineParams returns engine settings for the rules of cfg.
func engineParams(cfg game.Config) (mab.Params, error) {
	p := mab.Params{
		NumArms:          cfg.NumArms,
		DecayRate:        cfg.DecayRate,
		Resistance:       viper.GetFloat64("engine.resistance"),
		Optimism:         explicitZero(viper.GetFloat64("engine.optimism")),
		MomentumWindow:   viper.GetInt("engine.momentum_window"),
		MomentumMinPulls: viper.GetInt("engine.momentum_min_pulls"),
		MomentumBar:      explicitZero(viper.GetFloat64("engine.momentum_bar")),
		StaleWindow:      viper.GetInt("engine.stale_window"),
		SilenceLag:       viper.GetInt("engine.silence_lag"),
	}

	return p, p.Validate()
}

// explicitZero keeps a configured zero from being replaced by the engine
// default. Unset keys already carry the default.
func explicitZero(v float64) float64 {
	if v == 0 {
		return mab.ExplicitZero
	}

	return v
}
