package mab

// history records every elapsed turn from the home player's point of view.
// It is append-only.
type history struct {
	mine    []int // Arm we pulled each turn
	theirs  []int // Arm the opponent pulled each turn
	results []int // 1 if our pull succeeded, else 0

	// Per-arm pull counts, equal to the occurrences of each arm in mine/theirs.
	myCounts []int
	opCounts []int
}

func newHistory(nArms int) history {
	return history{
		myCounts: make([]int, nArms),
		opCounts: make([]int, nArms),
	}
}

func (h *history) add(mine, theirs, result int) {
	h.mine = append(h.mine, mine)
	h.theirs = append(h.theirs, theirs)
	h.results = append(h.results, result)
	h.myCounts[mine]++
	h.opCounts[theirs]++
}

// Len returns the number of turns recorded.
func (h *history) Len() int {
	return len(h.mine)
}

func (h *history) last() (mine, theirs, result int) {
	t := h.Len() - 1
	return h.mine[t], h.theirs[t], h.results[t]
}

// totalPulls returns the number of times either player has pulled the arm.
func (h *history) totalPulls(arm int) int {
	return h.myCounts[arm] + h.opCounts[arm]
}

// recentOpponentPulls counts the opponent's pulls of each arm over the
// last window turns (or all turns, if fewer have elapsed).
func (h *history) recentOpponentPulls(window int) []int {
	counts := make([]int, len(h.opCounts))
	start := h.Len() - window
	if start < 0 {
		start = 0
	}

	for _, arm := range h.theirs[start:] {
		counts[arm]++
	}

	return counts
}

// repeatedFirstPull returns true if the opponent's latest pull was its second
// pull of that arm ever and immediately followed the first one.
func (h *history) repeatedFirstPull() (int, bool) {
	t := h.Len() - 1
	if t < 1 {
		return -1, false
	}

	arm := h.theirs[t]
	if h.opCounts[arm] == 2 && h.theirs[t-1] == arm {
		return arm, true
	}

	return -1, false
}

// abandonedPull returns the arm the opponent pulled lag turns ago if that
// pull was the opponent's only pull of the arm before the latest turn.
// It never fires until lag turns have been recorded.
func (h *history) abandonedPull(lag int) (int, bool) {
	n := h.Len()
	if n < lag {
		return -1, false
	}

	arm := h.theirs[n-lag]
	prior := h.opCounts[arm]
	if h.theirs[n-1] == arm {
		prior--
	}

	if prior == 1 {
		return arm, true
	}

	return -1, false
}
