package orchestrator

import (
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/state"
)

// computeTiers partitions agents into dependency tiers. An agent joins the
// earliest tier in which every field it reads is available, where available
// means present in the seed set or written by an earlier tier. Agents of one
// tier never read each other's writes, so they can run concurrently. The
// second return value lists agents whose reads can never be satisfied.
func computeTiers(agents []core.Agent, available map[string]bool) ([][]core.Agent, []core.Agent) {
	avail := make(map[string]bool, len(available))
	for f, ok := range available {
		if ok {
			avail[f] = true
		}
	}

	pending := make([]core.Agent, len(agents))
	copy(pending, agents)

	var tiers [][]core.Agent
	for len(pending) > 0 {
		var tier, rest []core.Agent
		for _, ag := range pending {
			if readsSatisfied(ag.Descriptor(), avail) {
				tier = append(tier, ag)
			} else {
				rest = append(rest, ag)
			}
		}
		if len(tier) == 0 {
			// The rest form a dependency cycle or read fields nobody writes.
			return tiers, rest
		}
		for _, ag := range tier {
			for _, w := range ag.Descriptor().Writes {
				avail[w] = true
			}
		}
		tiers = append(tiers, tier)
		pending = rest
	}
	return tiers, nil
}

func readsSatisfied(d core.Descriptor, avail map[string]bool) bool {
	for _, f := range d.Reads {
		// Engine accumulators always exist.
		if state.IsReserved(f) {
			continue
		}
		if !avail[f] {
			return false
		}
	}
	return true
}
