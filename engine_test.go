package mab

import (
	"bytes"
	"encoding/gob"
	"math"
	"math/rand"
	"testing"
)

const tol = 1e-9

func newTestEngine(t testing.TB, params Params, seed int64) *Engine {
	e, err := NewEngine(params, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatal(err)
	}

	return e
}

// rankMean is the expected threshold level, ignoring decay of the support.
func rankMean(weights []float64) float64 {
	var mean float64
	for i, w := range weights {
		mean += float64(i) * w
	}

	return mean
}

func TestObserve_Invariants(t *testing.T) {
	e := newTestEngine(t, Params{}, 1)
	rng := rand.New(rand.NewSource(2))
	nArms := e.Params().NumArms

	prev := make([][][]float64, numKinds)
	for k := range prev {
		prev[k] = make([][]float64, nArms)
		for arm := range prev[k] {
			prev[k][arm], _ = e.Beliefs(Kind(k), arm)
		}
	}

	for turn := 0; turn < 300; turn++ {
		// Bias play toward a few arms so that the heuristics fire.
		mine := rng.Intn(10)
		theirs := rng.Intn(nArms)
		if rng.Intn(2) == 0 {
			theirs = rng.Intn(5)
		}
		e.Observe(mine, theirs, rng.Intn(3) == 0)

		for k := Kind(0); k < numKinds; k++ {
			for arm := 0; arm < nArms; arm++ {
				supports, weights := e.Beliefs(k, arm)
				var total float64
				for _, w := range weights {
					if w < 0 {
						t.Fatalf("[turn=%d] negative weight for %v arm %d: %v", turn, k, arm, w)
					}
					total += w
				}

				if math.Abs(total-1) > tol {
					t.Fatalf("[turn=%d] %v arm %d beliefs sum to %v", turn, k, arm, total)
				}

				for i, s := range supports {
					if s > prev[k][arm][i] {
						t.Fatalf("[turn=%d] %v arm %d support %d increased from %v to %v",
							turn, k, arm, i, prev[k][arm][i], s)
					}
				}
				prev[k][arm] = supports
			}
		}
	}

	var myTotal, opTotal int
	for arm := 0; arm < nArms; arm++ {
		mine, theirs := e.PullCounts(arm)
		myTotal += mine
		opTotal += theirs

		var myExpected, opExpected int
		for i := range e.history.mine {
			if e.history.mine[i] == arm {
				myExpected++
			}
			if e.history.theirs[i] == arm {
				opExpected++
			}
		}

		if mine != myExpected || theirs != opExpected {
			t.Errorf("arm %d counts (%d, %d) do not match history (%d, %d)",
				arm, mine, theirs, myExpected, opExpected)
		}
	}

	if myTotal != e.Turns() || opTotal != e.Turns() {
		t.Errorf("expected %d pulls per player, got %d and %d", e.Turns(), myTotal, opTotal)
	}
}

func TestAct_FirstTurnUniform(t *testing.T) {
	const nArms = 20
	const nRuns = 10000

	counts := make([]int, nArms)
	for seed := int64(0); seed < nRuns; seed++ {
		e := newTestEngine(t, Params{NumArms: nArms}, seed)
		counts[e.Act(Observation{})]++
	}

	expected := float64(nRuns) / nArms
	var chiSq float64
	for _, n := range counts {
		d := float64(n) - expected
		chiSq += d * d / expected
	}

	// 19 degrees of freedom: P(chi^2 > 50) < 1e-4.
	t.Logf("first turn counts: %v, chi^2 = %.2f", counts, chiSq)
	if chiSq > 50 {
		t.Errorf("first turn choice is not uniform: chi^2 = %v", chiSq)
	}
}

func TestAct_ObservesRewardIncrements(t *testing.T) {
	e := newTestEngine(t, Params{}, 3)
	first := e.Act(Observation{Step: 0, AgentIndex: 1})
	if e.Turns() != 0 {
		t.Fatalf("first turn should not record history, got %d turns", e.Turns())
	}

	e.Act(Observation{Step: 1, AgentIndex: 1, LastActions: [2]int{42, first}, Reward: 1})
	e.Act(Observation{Step: 2, AgentIndex: 1, LastActions: [2]int{42, first}, Reward: 1})

	if e.Turns() != 2 {
		t.Fatalf("expected 2 turns, got %d", e.Turns())
	}

	if e.history.results[0] != 1 || e.history.results[1] != 0 {
		t.Errorf("expected results [1 0], got %v", e.history.results)
	}

	if e.history.mine[0] != first || e.history.theirs[0] != 42 {
		t.Errorf("expected (%d, 42), got (%d, %d)", first, e.history.mine[0], e.history.theirs[0])
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic when reward jumps by more than one")
		}
	}()
	e.Act(Observation{Step: 3, AgentIndex: 1, LastActions: [2]int{42, first}, Reward: 3})
}

func TestObserve_ArmOutOfRange(t *testing.T) {
	e := newTestEngine(t, Params{}, 4)
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for out of range arm")
		}
	}()

	e.Observe(0, e.Params().NumArms, false)
}

func TestObserve_SuccessConcentratesBelief(t *testing.T) {
	e := newTestEngine(t, Params{}, 5)
	const arm = 4

	var prev [numKinds]float64
	for k := range prev {
		prev[k] = float64(NumLevels-1) / 2
	}

	for turn := 0; turn < 50; turn++ {
		e.Observe(arm, 60, true)
		for k := Kind(0); k < numKinds; k++ {
			_, weights := e.Beliefs(k, arm)
			mean := rankMean(weights)
			if mean < prev[k]-tol {
				t.Errorf("[turn=%d] %v belief moved down after success: %v -> %v",
					turn, k, prev[k], mean)
			}
			prev[k] = mean
		}
	}

	for k, mean := range prev {
		if mean < 80 {
			t.Errorf("%v belief did not concentrate on high thresholds: mean level %v", Kind(k), mean)
		}
	}
}

func TestObserve_DecayScope(t *testing.T) {
	const rate = 0.97
	e := newTestEngine(t, Params{DecayRate: rate}, 24)

	checkSupports := func(k Kind, arm, decays int) {
		t.Helper()
		supports, _ := e.Beliefs(k, arm)
		scale := math.Pow(rate, float64(decays))
		for i, s := range supports {
			if math.Abs(s-scale*float64(i)) > tol {
				t.Fatalf("%v arm %d level %d: expected %v, got %v", k, arm, i, scale*float64(i), s)
			}
		}
	}

	// Different arms: the opponent's pull only decays the joint model.
	e.Observe(1, 2, false)
	checkSupports(OwnDecay, 1, 1)
	checkSupports(JointDecay, 1, 1)
	checkSupports(OwnDecay, 2, 0)
	checkSupports(JointDecay, 2, 1)
	checkSupports(OwnDecay, 3, 0)
	checkSupports(JointDecay, 3, 0)

	// Same arm: the joint model decays once per player.
	e.Observe(4, 4, true)
	checkSupports(OwnDecay, 4, 1)
	checkSupports(JointDecay, 4, 2)
}

// expectTilted checks that after equals before reweighted by lik over supports.
func expectTilted(t *testing.T, k Kind, before, supports, after []float64, lik likelihood) {
	t.Helper()
	expected := append([]float64(nil), before...)
	tilt(expected, supports, lik)
	for i := range expected {
		if math.Abs(after[i]-expected[i]) > tol {
			t.Fatalf("%v level %d: expected weight %v, got %v", k, i, expected[i], after[i])
		}
	}
}

func TestObserve_HeuristicCorrections(t *testing.T) {
	const rate = 0.97
	const arm = 5
	corrections := [numKinds]float64{OwnDecay: 1, JointDecay: rate}

	e := newTestEngine(t, Params{DecayRate: rate}, 25)
	e.Observe(0, arm, false)

	var supports, weights [numKinds][]float64
	for k := Kind(0); k < numKinds; k++ {
		supports[k], weights[k] = e.Beliefs(k, arm)
	}

	// The repeat is judged against the support as it stood on the first pull.
	e.Observe(0, arm, false)
	for k := Kind(0); k < numKinds; k++ {
		d := corrections[k]
		_, after := e.Beliefs(k, arm)
		expectTilted(t, k, weights[k], supports[k], after, func(s float64) float64 {
			return math.Min(math.Ceil(s/d), 100)
		})
	}

	const abandoned = 9
	e = newTestEngine(t, Params{DecayRate: rate}, 26)
	e.Observe(0, abandoned, false)
	for turn := 1; turn < 101; turn++ {
		e.Observe(0, 3, false)
	}

	for k := Kind(0); k < numKinds; k++ {
		supports[k], weights[k] = e.Beliefs(k, abandoned)
	}

	e.Observe(0, 3, false)
	for k := Kind(0); k < numKinds; k++ {
		d := corrections[k]
		_, after := e.Beliefs(k, abandoned)
		expectTilted(t, k, weights[k], supports[k], after, func(s float64) float64 {
			return 101 - math.Min(math.Ceil(s/d), 100)
		})
	}
}

func TestObserve_RepeatedFirstPullInfersSuccess(t *testing.T) {
	const arm = 5

	repeated := newTestEngine(t, Params{}, 6)
	repeated.Observe(0, arm, false)
	repeated.Observe(0, arm, false)

	switched := newTestEngine(t, Params{}, 6)
	switched.Observe(0, arm, false)
	switched.Observe(0, 7, false)

	for k := Kind(0); k < numKinds; k++ {
		_, wRepeated := repeated.Beliefs(k, arm)
		_, wSwitched := switched.Beliefs(k, arm)
		mRepeated, mSwitched := rankMean(wRepeated), rankMean(wSwitched)
		t.Logf("%v: repeated=%.3f switched=%.3f", k, mRepeated, mSwitched)
		if mRepeated <= mSwitched+1 {
			t.Errorf("%v: expected repeat to shift belief up: repeated=%v switched=%v",
				k, mRepeated, mSwitched)
		}
	}

	// A third consecutive pull is not a first repeat.
	_, before := repeated.Beliefs(OwnDecay, arm)
	repeated.Observe(0, arm, false)
	_, after := repeated.Beliefs(OwnDecay, arm)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("belief changed on a third opponent pull at level %d: %v -> %v",
				i, before[i], after[i])
		}
	}
}

func TestObserve_AbandonedPullInfersFailure(t *testing.T) {
	const arm = 9
	e := newTestEngine(t, Params{}, 7)
	fresh := newTestEngine(t, Params{}, 7)
	uniformEstimate := fresh.untiltedEstimate(OwnDecay, arm)

	e.Observe(0, arm, false)
	for turn := 1; turn < 101; turn++ {
		e.Observe(0, 3, false)
	}

	// Not yet: the single pull is still inside the look-back.
	for k := Kind(0); k < numKinds; k++ {
		_, weights := e.Beliefs(k, arm)
		if mean := rankMean(weights); math.Abs(mean-50) > tol {
			t.Fatalf("%v: belief changed before the silence lag elapsed: %v", k, mean)
		}
	}

	// But the estimate is already tilted down as a stale single pull.
	if est := e.Estimates(OwnDecay)[arm]; est >= uniformEstimate {
		t.Errorf("expected stale pull to tilt estimate below %v, got %v", uniformEstimate, est)
	}

	e.Observe(0, 3, false)
	var fired [numKinds][]float64
	for k := Kind(0); k < numKinds; k++ {
		_, weights := e.Beliefs(k, arm)
		if mean := rankMean(weights); mean >= 50 {
			t.Errorf("%v: expected failure inference to shift belief down, mean level %v", k, mean)
		}
		fired[k] = weights
	}

	// The single pull has left the stale window, so the estimate is untilted,
	// and lower than it was before the opponent ever touched the arm.
	est := e.Estimates(OwnDecay)[arm]
	if est != e.untiltedEstimate(OwnDecay, arm) {
		t.Errorf("expected untilted estimate %v, got %v", e.untiltedEstimate(OwnDecay, arm), est)
	}
	if est >= uniformEstimate {
		t.Errorf("expected estimate below %v, got %v", uniformEstimate, est)
	}

	// The inference is applied exactly once.
	e.Observe(0, 3, false)
	for k := Kind(0); k < numKinds; k++ {
		_, weights := e.Beliefs(k, arm)
		for i := range weights {
			if weights[i] != fired[k][i] {
				t.Fatalf("%v: belief changed again at level %d", k, i)
			}
		}
	}
}

func TestEstimates_MomentumTilt(t *testing.T) {
	const weak, strong = 1, 2
	e := newTestEngine(t, Params{}, 8)

	for turn := 0; turn < 30; turn++ {
		e.Observe(weak, 50, false)
	}

	for turn := 0; turn < 10; turn++ {
		theirs := weak
		if turn%2 == 1 {
			theirs = strong
		}
		e.Observe(weak, theirs, false)
	}

	for k := Kind(0); k < numKinds; k++ {
		estimates := e.Estimates(k)

		untilted := e.untiltedEstimate(k, weak)
		if untilted >= e.Params().MomentumBar {
			t.Fatalf("%v: weak arm estimate %v is not below the bar", k, untilted)
		}
		if estimates[weak] != untilted {
			t.Errorf("%v: weak arm should not be tilted: %v != %v", k, estimates[weak], untilted)
		}

		untilted = e.untiltedEstimate(k, strong)
		if untilted <= e.Params().MomentumBar {
			t.Fatalf("%v: strong arm estimate %v is not above the bar", k, untilted)
		}
		t.Logf("%v: strong arm untilted=%.3f tilted=%.3f", k, untilted, estimates[strong])
		if estimates[strong] <= untilted+1 {
			t.Errorf("%v: strong arm should be tilted up: %v <= %v", k, estimates[strong], untilted)
		}
	}
}

func TestEstimates_LongMomentumWindow(t *testing.T) {
	const followed = 2
	e := newTestEngine(t, Params{MomentumWindow: 200}, 22)
	for turn := 0; turn < 160; turn++ {
		e.Observe(3, followed, true)
	}

	for k := Kind(0); k < numKinds; k++ {
		for arm, est := range e.Estimates(k) {
			if math.IsNaN(est) || math.IsInf(est, 0) {
				t.Fatalf("%v arm %d: estimate %v", k, arm, est)
			}
		}
	}

	untilted := e.untiltedEstimate(OwnDecay, followed)
	if est := e.Estimates(OwnDecay)[followed]; est <= untilted {
		t.Errorf("expected followed arm tilted above %v, got %v", untilted, est)
	}

	if arm := e.Choose(); arm < 0 || arm >= e.Params().NumArms {
		t.Errorf("chose arm %d out of range", arm)
	}
}

func TestEstimates_ExplicitZeroOptimism(t *testing.T) {
	e := newTestEngine(t, Params{Optimism: ExplicitZero, MomentumBar: ExplicitZero}, 23)
	if p := e.Params(); p.Optimism != 0 || p.MomentumBar != 0 {
		t.Fatalf("expected zero optimism and bar, got %+v", p)
	}

	// Every arm is uniform with mean 50 on the first turn.
	for arm, est := range e.Estimates(OwnDecay) {
		if math.Abs(est-50) > tol {
			t.Errorf("arm %d: expected mean estimate 50, got %v", arm, est)
		}
	}
}

func TestEstimates_DoNotMutateBeliefs(t *testing.T) {
	e := newTestEngine(t, Params{}, 9)
	for turn := 0; turn < 20; turn++ {
		e.Observe(turn%3, turn%2, turn%4 == 0)
	}

	var before [numKinds][][]float64
	for k := range before {
		for arm := 0; arm < e.Params().NumArms; arm++ {
			_, weights := e.Beliefs(Kind(k), arm)
			before[k] = append(before[k], weights)
		}
	}

	first := e.BlendedEstimates()
	second := e.BlendedEstimates()
	for arm := range first {
		if first[arm] != second[arm] {
			t.Errorf("arm %d estimate changed between calls: %v -> %v", arm, first[arm], second[arm])
		}
	}

	for k := range before {
		for arm, expected := range before[k] {
			_, weights := e.Beliefs(Kind(k), arm)
			for i := range weights {
				if weights[i] != expected[i] {
					t.Fatalf("%v arm %d level %d mutated by estimation", Kind(k), arm, i)
				}
			}
		}
	}
}

func TestWeight_Boundaries(t *testing.T) {
	e := newTestEngine(t, Params{Resistance: 4}, 10)
	const pulled, halfway, untouched = 3, 5, 7

	e.Observe(pulled, pulled, true)
	e.Observe(pulled, pulled, false)
	e.Observe(halfway, halfway, false)

	if w := e.Weight(pulled); w != 1 {
		t.Errorf("expected w=1 at resistance, got %v", w)
	}
	if w := e.Weight(halfway); w != 0.5 {
		t.Errorf("expected w=0.5, got %v", w)
	}
	if w := e.Weight(untouched); w != 0 {
		t.Errorf("expected w=0 with no pulls, got %v", w)
	}

	blended := e.BlendedEstimates()
	own := e.Estimates(OwnDecay)
	joint := e.Estimates(JointDecay)
	if blended[pulled] != joint[pulled] {
		t.Errorf("expected joint estimate %v at w=1, got %v", joint[pulled], blended[pulled])
	}
	if blended[untouched] != own[untouched] {
		t.Errorf("expected own estimate %v at w=0, got %v", own[untouched], blended[untouched])
	}

	e.Observe(pulled, 0, false)
	if w := e.Weight(pulled); w != 1 {
		t.Errorf("expected w to saturate at 1, got %v", w)
	}
}

func TestChoose_BreaksTiesUniformly(t *testing.T) {
	e := newTestEngine(t, Params{NumArms: 4}, 11)
	counts := make([]int, 4)
	for i := 0; i < 4000; i++ {
		counts[e.Choose()]++
	}

	for arm, n := range counts {
		if n < 850 || n > 1150 {
			t.Errorf("arm %d chosen %d/4000 times among equal estimates", arm, n)
		}
	}
}

func TestChoose_PrefersSuccessfulArm(t *testing.T) {
	e := newTestEngine(t, Params{}, 12)
	// Few enough pulls that decay has not yet made unexplored arms more attractive.
	for turn := 0; turn < 3; turn++ {
		e.Observe(17, 50+turn, true)
	}

	if arm := e.Choose(); arm != 17 {
		t.Errorf("expected to keep pulling a succeeding arm, chose %d", arm)
	}
}

func TestLoadEngine(t *testing.T) {
	e := newTestEngine(t, Params{Resistance: 250}, 13)
	rng := rand.New(rand.NewSource(14))
	for turn := 0; turn < 150; turn++ {
		e.Observe(rng.Intn(100), rng.Intn(100), rng.Intn(2) == 0)
	}

	var buf bytes.Buffer
	if err := e.MarshalTo(&buf); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadEngine(&buf, rand.New(rand.NewSource(15)))
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Turns() != e.Turns() {
		t.Errorf("expected %d turns, got %d", e.Turns(), loaded.Turns())
	}
	if loaded.Params() != e.Params() {
		t.Errorf("expected params %+v, got %+v", e.Params(), loaded.Params())
	}

	expected := e.BlendedEstimates()
	got := loaded.BlendedEstimates()
	for arm := range expected {
		if expected[arm] != got[arm] {
			t.Errorf("arm %d: expected estimate %v, got %v", arm, expected[arm], got[arm])
		}

		m1, o1 := e.PullCounts(arm)
		m2, o2 := loaded.PullCounts(arm)
		if m1 != m2 || o1 != o2 {
			t.Errorf("arm %d: expected counts (%d, %d), got (%d, %d)", arm, m1, o1, m2, o2)
		}
	}
}

func TestLoadEngine_Corrupt(t *testing.T) {
	e := newTestEngine(t, Params{NumArms: 4}, 20)
	for turn := 0; turn < 5; turn++ {
		e.Observe(turn%4, (turn+1)%4, turn%2 == 0)
	}

	var buf bytes.Buffer
	if err := e.MarshalTo(&buf); err != nil {
		t.Fatal(err)
	}
	checkpoint := buf.Bytes()

	corruptions := map[string]func(s *engineState){
		"short support": func(s *engineState) { s.Supports[OwnDecay][1] = s.Supports[OwnDecay][1][:50] },
		"short weights": func(s *engineState) { s.Weights[JointDecay][3] = s.Weights[JointDecay][3][:100] },
		"missing arm":   func(s *engineState) { s.Weights[OwnDecay] = s.Weights[OwnDecay][:3] },
		"bad result":    func(s *engineState) { s.Results[2] = 2 },
		"bad arm":       func(s *engineState) { s.Theirs[0] = 4 },
		"short history": func(s *engineState) { s.Results = s.Results[:4] },
	}

	for name, corrupt := range corruptions {
		var state engineState
		if err := gob.NewDecoder(bytes.NewReader(checkpoint)).Decode(&state); err != nil {
			t.Fatal(err)
		}
		corrupt(&state)

		var corrupted bytes.Buffer
		if err := gob.NewEncoder(&corrupted).Encode(&state); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadEngine(&corrupted, rand.New(rand.NewSource(21))); err == nil {
			t.Errorf("%s: expected error loading corrupt checkpoint", name)
		}
	}
}

func TestParams_Validate(t *testing.T) {
	if err := (Params{}).Validate(); err != nil {
		t.Errorf("empty params should be valid: %v", err)
	}

	invalid := []Params{
		{NumArms: -1},
		{DecayRate: 1.5},
		{Resistance: -10},
		{Optimism: -2},
		{MomentumBar: -3},
		{MomentumWindow: -2},
		{SilenceLag: 1},
	}

	for _, p := range invalid {
		if err := p.Validate(); err == nil {
			t.Errorf("expected error for %+v", p)
		}

		if _, err := NewEngine(p, rand.New(rand.NewSource(0))); err == nil {
			t.Errorf("expected NewEngine to reject %+v", p)
		}
	}
}

func BenchmarkEngineAct(b *testing.B) {
	e := newTestEngine(b, Params{}, 16)
	rng := rand.New(rand.NewSource(17))
	var reward int
	obs := Observation{}
	for i := 0; i < b.N; i++ {
		obs.Step = i
		arm := e.Act(obs)
		if rng.Intn(2) == 0 {
			reward++
		}
		obs.LastActions = [2]int{arm, rng.Intn(100)}
		obs.Reward = reward
	}
}

func BenchmarkEstimates(b *testing.B) {
	e := newTestEngine(b, Params{}, 18)
	rng := rand.New(rand.NewSource(19))
	for turn := 0; turn < 200; turn++ {
		e.Observe(rng.Intn(100), rng.Intn(100), rng.Intn(2) == 0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Estimates(JointDecay)
	}
}
