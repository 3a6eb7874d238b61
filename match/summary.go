package match

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/timpalpant/go-mab/game"
)

// Summary aggregates the results of many matches.
type Summary struct {
	Matches int

	ExpectedScore       [2]float64
	ExpectedScoreStdErr [2]float64
	// Percentage of matches in which player 1's expected score beat player 0's.
	ExpectedWinRate1 float64

	RawScore       [2]float64
	RawScoreStdErr [2]float64
	// Percentage of matches in which player 1's raw score beat player 0's.
	RawWinRate1 float64
}

// Summarize computes mean scores and win rates over the given results.
func Summarize(results []Result) Summary {
	n := len(results)
	s := Summary{Matches: n}
	if n == 0 {
		return s
	}

	var expected, raw [2][]float64
	expectedWins := make([]float64, n)
	rawWins := make([]float64, n)
	for i, r := range results {
		for p := 0; p < 2; p++ {
			expected[p] = append(expected[p], r.ExpectedScores[p])
			raw[p] = append(raw[p], float64(r.RawScores[p]))
		}

		if r.ExpectedScores[1] > r.ExpectedScores[0] {
			expectedWins[i] = 100
		}
		if r.RawScores[1] > r.RawScores[0] {
			rawWins[i] = 100
		}
	}

	for p := 0; p < 2; p++ {
		s.ExpectedScore[p], s.ExpectedScoreStdErr[p] = meanStdErr(expected[p])
		s.RawScore[p], s.RawScoreStdErr[p] = meanStdErr(raw[p])
	}

	s.ExpectedWinRate1 = stat.Mean(expectedWins, nil)
	s.RawWinRate1 = stat.Mean(rawWins, nil)
	return s
}

func meanStdErr(x []float64) (mean, stdErr float64) {
	mean, std := stat.MeanStdDev(x, nil)
	if len(x) < 2 || math.IsNaN(std) {
		return mean, 0
	}

	return mean, stat.StdErr(std, float64(len(x)))
}

// String implements fmt.Stringer.
func (s Summary) String() string {
	var b strings.Builder
	rows := []struct {
		name  string
		value float64
	}{
		{"expected_score_0", s.ExpectedScore[0]},
		{"expected_score_1", s.ExpectedScore[1]},
		{"expected_win_rate_1", s.ExpectedWinRate1},
		{"raw_score_0", s.RawScore[0]},
		{"raw_score_1", s.RawScore[1]},
		{"raw_win_rate_1", s.RawWinRate1},
	}

	for _, row := range rows {
		fmt.Fprintf(&b, " * %-20s %7.2f\n", row.name, row.value)
	}

	fmt.Fprintf(&b, " * %-20s %7d\n", "matches", s.Matches)
	return b.String()
}

// Scoreboard renders the final score of an episode.
func Scoreboard(ep *game.Episode) string {
	raw := ep.RawScores()
	expected := ep.ExpectedScores()
	optimal := ep.OptimalFraction()

	var b strings.Builder
	fmt.Fprintf(&b, "Match:    %s -- %s\n", ep.Names[0], ep.Names[1])
	fmt.Fprintf(&b, "Score:    %d -- %d\n", raw[0], raw[1])
	fmt.Fprintf(&b, "Expected: %.0f -- %.0f\n", math.Round(expected[0]), math.Round(expected[1]))
	fmt.Fprintf(&b, "Optimal:  %.1f%% -- %.1f%%\n", 100*optimal[0], 100*optimal[1])
	return b.String()
}
