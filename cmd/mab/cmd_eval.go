package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/timpalpant/go-mab/match"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Play many matches in parallel and summarize the scores",
	RunE:  runEval,
}

var (
	evalMatches    int
	evalWorkers    int
	evalSeedOffset int64
)

func init() {
	evalCmd.Flags().IntVar(&evalMatches, "matches", 100, "Number of matches to play")
	evalCmd.Flags().IntVar(&evalWorkers, "workers", runtime.NumCPU(), "Matches to play concurrently")
	evalCmd.Flags().Int64Var(&evalSeedOffset, "seed-offset", 0, "Seed of the first match")
}

func runEval(cmd *cobra.Command, args []string) error {
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

	store, err := openStore()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	results, err := match.Evaluate(context.Background(), match.Options{
		Game:       cfg,
		Matches:    evalMatches,
		Workers:    evalWorkers,
		SeedOffset: evalSeedOffset,
		Names:      names,
		Store:      store,
	}, newPlayers)
	if err != nil {
		return err
	}

	fmt.Printf("%s vs. %s\n", names[0], names[1])
	fmt.Print(match.Summarize(results))
	return nil
}
