package game

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Episode is the complete record of a finished match.
type Episode struct {
	Seed    int64     `json:"seed"`
	Config  Config    `json:"configuration"`
	Names   [2]string `json:"names"`
	Records []Record  `json:"steps"`
}

// episodeData has the same fields as Episode without its gob methods.
type episodeData Episode

// RawScores returns each player's final cumulative reward.
func (ep *Episode) RawScores() [2]int {
	if len(ep.Records) == 0 {
		return [2]int{}
	}

	return ep.Records[len(ep.Records)-1].Rewards
}

// Winner returns the player with the higher raw score, or -1 on a tie.
func (ep *Episode) Winner() int {
	raw := ep.RawScores()
	switch {
	case raw[0] > raw[1]:
		return 0
	case raw[1] > raw[0]:
		return 1
	default:
		return -1
	}
}

// ExpectedScores returns each player's expected reward: the sum over steps
// of the success probability of the arm it pulled. Unlike the raw score it
// is not subject to the luck of the draws.
func (ep *Episode) ExpectedScores() [2]float64 {
	var scores [2]float64
	levels := float64(ep.Config.SampleResolution + 1)
	for _, r := range ep.Records {
		for player, arm := range r.Actions {
			scores[player] += math.Ceil(r.Thresholds[arm]) / levels
		}
	}

	return scores
}

// OptimalFraction returns, for each player, the fraction of steps on which
// it pulled an arm with the highest true threshold.
func (ep *Episode) OptimalFraction() [2]float64 {
	var result [2]float64
	if len(ep.Records) == 0 {
		return result
	}

	for _, r := range ep.Records {
		best := math.Inf(-1)
		for _, x := range r.Thresholds {
			best = math.Max(best, x)
		}

		for player, arm := range r.Actions {
			if r.Thresholds[arm] == best {
				result[player]++
			}
		}
	}

	for player := range result {
		result[player] /= float64(len(ep.Records))
	}

	return result
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (ep *Episode) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode((*episodeData)(ep)); err != nil {
		return nil, errors.Wrapf(err, "encoding episode %d", ep.Seed)
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (ep *Episode) UnmarshalBinary(buf []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(buf))
	return errors.Wrap(dec.Decode((*episodeData)(ep)), "decoding episode")
}

// WriteJSON writes the episode as a single JSON document.
func (ep *Episode) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	return errors.Wrapf(enc.Encode(ep), "writing episode %d", ep.Seed)
}

// ReadEpisodeJSON reads an episode written by WriteJSON.
func ReadEpisodeJSON(r io.Reader) (*Episode, error) {
	var ep Episode
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ep); err != nil {
		return nil, errors.Wrap(err, "reading episode")
	}

	if err := ep.Config.Validate(); err != nil {
		return nil, err
	}

	return &ep, nil
}
