package transform

import (
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/powerset/pkg/automaton"
)

// Closure returns the epsilon closure of states in a: the smallest set
// containing states and closed under epsilon transitions. The result is
// sorted by state id. States not in a are ignored.
//
// Cyclic epsilon graphs are safe; each state is visited at most once.
func Closure(a *automaton.Automaton, states []automaton.State) []automaton.State {
	seed := bitset.New(uint(a.NumStates()))
	for _, s := range states {
		if i, ok := a.IndexOf(s); ok {
			seed.Set(uint(i))
		}
	}
	return toStates(a, closure(a, seed))
}

// closure extends set in place with every state reachable through epsilon
// transitions and returns it. The traversal is an explicit FIFO worklist;
// set doubles as the visited marker.
func closure(a *automaton.Automaton, set *bitset.BitSet) *bitset.BitSet {
	queue := make([]int, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		queue = append(queue, int(i))
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, q := range a.EpsilonStep(p) {
			if !set.Test(uint(q)) {
				set.Set(uint(q))
				queue = append(queue, q)
			}
		}
	}
	return set
}

// move returns the dense states reachable from set on the alphabet symbol at
// position k in one step, without closure.
func move(a *automaton.Automaton, set *bitset.BitSet, k int) *bitset.BitSet {
	out := bitset.New(uint(a.NumStates()))
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		for _, q := range a.Step(int(i), k) {
			out.Set(uint(q))
		}
	}
	return out
}

// toStates converts a dense bitset to state ids sorted ascending.
func toStates(a *automaton.Automaton, set *bitset.BitSet) []automaton.State {
	out := make([]automaton.State, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		out = append(out, a.StateAt(int(i)))
	}
	slices.Sort(out)
	return out
}
