package mab

// beliefPool recycles the scratch distributions used to tilt beliefs.
// A nil *beliefPool allocates on every call.
type beliefPool struct {
	free [][]float64
}

// copyOf returns a scratch copy of weights, to be returned with put.
func (p *beliefPool) copyOf(weights []float64) []float64 {
	buf := p.get(len(weights))
	copy(buf, weights)
	return buf
}

func (p *beliefPool) get(n int) []float64 {
	if p == nil || len(p.free) == 0 {
		return make([]float64, n)
	}

	last := len(p.free) - 1
	buf := p.free[last]
	p.free = p.free[:last]
	if cap(buf) < n {
		return make([]float64, n)
	}

	return buf[:n]
}

func (p *beliefPool) put(buf []float64) {
	if p != nil && cap(buf) > 0 {
		p.free = append(p.free, buf)
	}
}
