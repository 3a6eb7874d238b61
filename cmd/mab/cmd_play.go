package main

import (
	"context"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/timpalpant/go-mab"
	"github.com/timpalpant/go-mab/game"
	"github.com/timpalpant/go-mab/match"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a single match and print the scoreboard",
	RunE:  runPlay,
}

var (
	playSeed       int64
	playOut        string
	playCheckpoint string
)

func init() {
	playCmd.Flags().Int64Var(&playSeed, "seed", 1, "Seed of the match")
	playCmd.Flags().StringVar(&playOut, "out", "", "Write the episode as JSON to this file")
	playCmd.Flags().StringVar(&playCheckpoint, "checkpoint", "", "Save the final state of the engine to this file")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := gameConfig()
	if err != nil {
		return err
	}

	params, err := engineParams(cfg)
	if err != nil {
		return err
	}

	newPlayers, names, err := newFactory(opponent, params)
	if err != nil {
		return err
	}

	players, err := newPlayers(playSeed)
	if err != nil {
		return err
	}

	ep, err := match.Play(context.Background(), cfg, playSeed, players)
	if err != nil {
		return err
	}
	ep.Names = names

	if playOut != "" {
		if err := writeEpisode(playOut, ep); err != nil {
			return err
		}
	}

	if playCheckpoint != "" {
		if err := saveEngine(playCheckpoint, players[0].(*mab.Engine)); err != nil {
			return err
		}
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		if err := store.Put(ep); err != nil {
			return err
		}
	}

	fmt.Print(match.Scoreboard(ep))
	return nil
}

func writeEpisode(path string, ep *game.Episode) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ep.WriteJSON(f); err != nil {
		return errors.Wrapf(err, "writing episode to %s", path)
	}

	glog.Infof("Saved episode %d to %s", ep.Seed, path)
	return f.Close()
}

func saveEngine(path string, e *mab.Engine) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := e.MarshalTo(f); err != nil {
		return errors.Wrapf(err, "saving engine to %s", path)
	}

	glog.Infof("Saved engine after %d turns to %s", e.Turns(), path)
	return f.Close()
}
