package graph

import (
	"fmt"
	"strings"
)

// AlgebraicLoopError reports a dependency cycle in the signal graph: a
// loop with no delay element breaking it, so no evaluation order exists.
// Blocks lists every block Kahn's algorithm could not drain, a superset
// of the offending cycle, not necessarily the minimal one.
type AlgebraicLoopError struct {
	Blocks []string
}

func (e *AlgebraicLoopError) Error() string {
	return fmt.Sprintf("algebraic loop: cannot order blocks %s", strings.Join(e.Blocks, ", "))
}

// Order returns the block identifiers in evaluation order: every block
// appears after all blocks feeding its inputs. Kahn's algorithm with the
// ready queue seeded in block insertion order, so the schedule is
// deterministic for a fixed schematic.
//
// Run this once per simulation run; the topology is static for the run.
func (g *Graph) Order() ([]string, error) {
	indeg := make(map[string]int, len(g.ids))
	for _, id := range g.ids {
		indeg[id] = len(g.ins[id])
	}

	queue := make([]string, 0, len(g.ids))
	for _, id := range g.ids {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range g.outs[id] {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) < len(g.ids) {
		undrained := make([]string, 0, len(g.ids)-len(order))
		for _, id := range g.ids {
			if indeg[id] > 0 {
				undrained = append(undrained, id)
			}
		}
		return nil, &AlgebraicLoopError{Blocks: undrained}
	}
	return order, nil
}
