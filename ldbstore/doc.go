// Package ldbstore implements a game.EpisodeStore that keeps episodes
// on disk in a LevelDB database, rather than in memory.
//
// It is slower than game.EpisodeMap but can hold evaluation runs whose
// full pull histories do not fit in memory.
package ldbstore
