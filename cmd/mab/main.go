// Command mab plays and evaluates the decaying-threshold bandit engine.
package main

import (
	goflag "flag"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "mab",
	Short: "Play two-player decaying-threshold bandit matches",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(configFile)
	},
	SilenceUsage: true,
}

var (
	configFile string
	opponent   string
	storePath  string
	backend    string
)

func init() {
	// glog registers its flags on the standard flag set.
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	goflag.CommandLine.Parse([]string{})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "mab.yaml", "Config file with engine and game settings (optional)")
	flags.StringVar(&opponent, "opponent", "engine", "Opponent of the engine: engine, random or round_robin")
	flags.StringVar(&storePath, "store", "", "Directory of an episode database to save or load matches")
	flags.StringVar(&backend, "backend", "leveldb", "Episode database backend: leveldb or rocksdb")
	flags.Int("steps", 0, "Steps per match (overrides game.steps)")
	bindFlag("game.steps", flags.Lookup("steps"))

	rootCmd.AddCommand(playCmd, evalCmd, replayCmd)
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		glog.Exit(err)
	}
}
