package transform

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/powerset/pkg/automaton"
)

// Reachable returns the states reachable from the start state of a along
// any declared transition, epsilon included, sorted by state id.
func Reachable(a *automaton.Automaton) []automaton.State {
	return toStates(a, reachable(a))
}

// reachable performs a breadth-first search from the start state and returns
// the visited dense indexes.
func reachable(a *automaton.Automaton) *bitset.BitSet {
	k := len(a.Alphabet())
	seen := bitset.New(uint(a.NumStates()))
	seen.Set(uint(a.StartIndex()))
	queue := []int{a.StartIndex()}

	visit := func(targets []int) {
		for _, q := range targets {
			if !seen.Test(uint(q)) {
				seen.Set(uint(q))
				queue = append(queue, q)
			}
		}
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		visit(a.EpsilonStep(p))
		for sym := 0; sym < k; sym++ {
			visit(a.Step(p, sym))
		}
	}
	return seen
}
