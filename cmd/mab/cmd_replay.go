package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/timpalpant/go-mab/game"
	"github.com/timpalpant/go-mab/match"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Print the scoreboard of saved matches",
	Long: `Print the scoreboard of a match saved with play --out (--in), or of
matches saved in an episode database (--store). With --store and no --seed,
every match in the database is printed.`,
	RunE: runReplay,
}

var (
	replayIn   string
	replaySeed int64
)

func init() {
	replayCmd.Flags().StringVar(&replayIn, "in", "", "Episode JSON file written by play --out")
	replayCmd.Flags().Int64Var(&replaySeed, "seed", 0, "Seed of the match to load from --store")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if replayIn != "" {
		ep, err := readEpisode(replayIn)
		if err != nil {
			return err
		}

		fmt.Print(match.Scoreboard(ep))
		return nil
	}

	store, err := openStore()
	if err != nil {
		return err
	} else if store == nil {
		return errors.New("one of --in or --store is required")
	}
	defer store.Close()

	seeds := []int64{replaySeed}
	if !cmd.Flags().Changed("seed") {
		if seeds, err = store.Seeds(); err != nil {
			return err
		}
	}

	var results []match.Result
	for _, seed := range seeds {
		ep, err := store.Get(seed)
		if err != nil {
			return err
		}

		fmt.Printf("Seed:     %d\n%s\n", seed, match.Scoreboard(ep))
		results = append(results, match.NewResult(ep))
	}

	if len(results) > 1 {
		fmt.Print(match.Summarize(results))
	}

	return nil
}

func readEpisode(path string) (*game.Episode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ep, err := game.ReadEpisodeJSON(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading episode from %s", path)
	}

	return ep, nil
}
