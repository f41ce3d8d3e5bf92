package transform

import (
	"slices"

	"github.com/matzehuels/powerset/pkg/automaton"
)

// missing stands in for the block of an absent transition. It is distinct
// from every real block index.
const missing = -1

// Minimize returns the minimal DFA equivalent to dfa.
//
// States unreachable from start are discarded first. The remaining states
// are grouped with Moore's partition refinement: the initial partition
// separates accepting from non-accepting states, and every pass splits each
// block, symbol by symbol, so that two states stay together only if their
// targets lie in the same block. A missing transition counts as its own
// pseudo-block. Refinement stops after a full pass with no split.
//
// Each block becomes one state labeled with the smallest state id in the
// block; its origin set lists the block members. Transitions are taken from
// that smallest member and re-targeted to block labels.
//
// A non-deterministic input is determinized with [Convert] first.
// Minimizing an already minimal DFA returns the same states, labels, and
// transitions.
func Minimize(dfa *automaton.Automaton) *automaton.Automaton {
	if !dfa.IsDeterministic() {
		dfa = Convert(dfa)
	}

	alphabet := dfa.Alphabet()
	live := reachable(dfa)

	// blockOf maps dense index -> block index for live states.
	blockOf := make([]int, dfa.NumStates())
	for i := range blockOf {
		blockOf[i] = missing
	}

	var accepting, rejecting []int
	for i, ok := live.NextSet(0); ok; i, ok = live.NextSet(i + 1) {
		if dfa.AcceptsIndex(int(i)) {
			accepting = append(accepting, int(i))
		} else {
			rejecting = append(rejecting, int(i))
		}
	}

	var blocks [][]int
	for _, members := range [][]int{accepting, rejecting} {
		if len(members) == 0 {
			continue
		}
		sortByID(dfa, members)
		for _, i := range members {
			blockOf[i] = len(blocks)
		}
		blocks = append(blocks, members)
	}

	target := func(i, k int) int {
		next := dfa.Step(i, k)
		if len(next) == 0 {
			return missing
		}
		return blockOf[next[0]]
	}

	for changed := true; changed; {
		changed = false
		for b := 0; b < len(blocks); b++ {
			for k := range alphabet {
				parts := split(blocks[b], func(i int) int { return target(i, k) })
				if len(parts) == 1 {
					continue
				}
				changed = true
				blocks[b] = parts[0]
				for _, part := range parts[1:] {
					for _, i := range part {
						blockOf[i] = len(blocks)
					}
					blocks = append(blocks, part)
				}
			}
		}
	}

	return buildMinimal(dfa, alphabet, blocks, blockOf)
}

// split partitions members by key, keeping members in their original order
// and ordering groups by first appearance.
func split(members []int, key func(int) int) [][]int {
	if len(members) < 2 {
		return [][]int{members}
	}
	var order []int
	groups := make(map[int][]int)
	for _, i := range members {
		k := key(i)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	parts := make([][]int, len(order))
	for j, k := range order {
		parts[j] = groups[k]
	}
	return parts
}

func buildMinimal(dfa *automaton.Automaton, alphabet []automaton.Symbol, blocks [][]int, blockOf []int) *automaton.Automaton {
	// Members are sorted by id, so the first member carries the block label.
	labels := make([]automaton.State, len(blocks))
	for b, members := range blocks {
		labels[b] = dfa.StateAt(members[0])
	}

	order := make([]int, len(blocks))
	for b := range order {
		order[b] = b
	}
	slices.SortFunc(order, func(x, y int) int { return int(labels[x]) - int(labels[y]) })

	out := automaton.NewBuilder(alphabet)
	for _, b := range order {
		members := blocks[b]
		origin := make([]automaton.State, len(members))
		for j, i := range members {
			origin[j] = dfa.StateAt(i)
		}
		out.AddGeneratedState(labels[b], dfa.AcceptsIndex(members[0]), origin)
	}
	out.SetStart(labels[blockOf[dfa.StartIndex()]])

	for _, b := range order {
		rep := blocks[b][0]
		for k, sym := range alphabet {
			next := dfa.Step(rep, k)
			if len(next) == 0 {
				continue
			}
			out.AddTransition(labels[b], sym, labels[blockOf[next[0]]])
		}
	}
	return out.Build()
}

func sortByID(a *automaton.Automaton, dense []int) {
	slices.SortFunc(dense, func(x, y int) int { return int(a.StateAt(x)) - int(a.StateAt(y)) })
}
