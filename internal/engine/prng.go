package engine

// Linear congruential recurrence shared by every execution path. The same
// constants seed the lanes, so changing them breaks reproducibility of every
// recorded run.
const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
)

// laneRNG is the per-lane generator. Each lane owns an independent state, so
// lanes never contend and a lane's sequence depends only on (lane, seed).
// Not cryptographically secure; it exists purely for reproducible simulation.
type laneRNG struct {
	state uint32
}

// newLaneRNG seeds a generator for one lane. Mixing the lane index through
// the recurrence decorrelates adjacent lanes that would otherwise start from
// consecutive counters.
func newLaneRNG(lane uint32, seed uint32) laneRNG {
	return laneRNG{state: lane*lcgMultiplier + lcgIncrement + seed}
}

// next advances the recurrence and returns the new 32-bit state as the draw.
func (r *laneRNG) next() uint32 {
	r.state = r.state*lcgMultiplier + lcgIncrement
	return r.state
}

// float64 returns one draw normalized to [0, 1).
func (r *laneRNG) float64() float64 {
	return float64(r.next()) / float64(1<<32)
}
