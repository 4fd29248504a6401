package budget

// Optimize distributes totalBudget over the planner's channels by greedy
// pairwise hill climbing. It starts from an equal split and, for every
// channel pair in list order, tries moving one step each way. A move is kept
// only when it strictly increases profit and leaves both channels inside
// their bounds. The search ends after a round without improvement, after
// RoundCap rounds, or after MaxRounds rounds. The result is a local optimum
// and depends on channel order.
func (p *Planner) Optimize(totalBudget float64, history History, constraints Constraints) OptimalAllocation {
	channels := p.assumptions.Channels
	if !(totalBudget > 0) || !finite(totalBudget) {
		allocation := make(Allocation, len(channels))
		for _, ch := range channels {
			allocation[ch] = 0
		}
		return OptimalAllocation{
			Allocation: allocation,
			Scenario:   p.Simulate(allocation, history),
			Converged:  true,
		}
	}

	aggregates := aggregateHistory(history)
	lo := make(map[string]float64, len(channels))
	hi := make(map[string]float64, len(channels))
	for _, ch := range channels {
		lo[ch], hi[ch] = constraints[ch].resolve(totalBudget)
	}

	allocation := initialAllocation(totalBudget, channels, lo, hi)
	best := p.simulate(allocation, aggregates).Profit
	step := p.assumptions.Step

	rounds := 0
	converged := false
	for rounds < p.assumptions.MaxRounds {
		improved := false
		for i := 0; i < len(channels); i++ {
			for j := i + 1; j < len(channels); j++ {
				for _, move := range [2][2]string{{channels[i], channels[j]}, {channels[j], channels[i]}} {
					from, to := move[0], move[1]
					if allocation[from]-step < lo[from] || allocation[to]+step > hi[to] {
						continue
					}
					candidate := allocation.Clone()
					candidate[from] -= step
					candidate[to] += step
					if profit := p.simulate(candidate, aggregates).Profit; profit > best {
						allocation = candidate
						best = profit
						improved = true
					}
				}
			}
		}
		rounds++
		if !improved {
			converged = true
			break
		}
		if rounds >= p.assumptions.RoundCap {
			break
		}
	}

	return OptimalAllocation{
		Allocation: allocation,
		Scenario:   p.simulate(allocation, aggregates),
		Iterations: rounds,
		Converged:  converged,
	}
}

// initialAllocation splits total equally, clamps each share into its bounds
// and then moves the clamped difference onto channels with room, in channel
// order. The total is preserved whenever the bounds allow it.
func initialAllocation(total float64, channels []string, lo, hi map[string]float64) Allocation {
	allocation := make(Allocation, len(channels))
	if len(channels) == 0 {
		return allocation
	}
	share := total / float64(len(channels))
	sum := 0.0
	for _, ch := range channels {
		v := share
		if v < lo[ch] {
			v = lo[ch]
		}
		if v > hi[ch] {
			v = hi[ch]
		}
		allocation[ch] = v
		sum += v
	}

	diff := total - sum
	for _, ch := range channels {
		switch {
		case diff > 0:
			add := min(hi[ch]-allocation[ch], diff)
			allocation[ch] += add
			diff -= add
		case diff < 0:
			sub := min(allocation[ch]-lo[ch], -diff)
			allocation[ch] -= sub
			diff += sub
		}
	}
	return allocation
}
