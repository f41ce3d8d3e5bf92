package transform

import (
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/powerset/pkg/automaton"
)

// subset is one discovered DFA state: its canonical set of NFA states and
// the id it was assigned.
type subset struct {
	id     automaton.State
	bits   *bitset.BitSet
	states []automaton.State // canonical: sorted, deduplicated
}

// Convert builds a DFA equivalent to nfa using subset construction.
//
// The DFA start state is the epsilon closure of the NFA start state. Subsets
// are processed first-in first-out; for every subset U and alphabet symbol s
// the target is closure(move(U, s)). An empty target emits no transition, so
// the DFA may be partial. New subsets receive ids 0, 1, 2, ... in discovery
// order, which makes the output identical across runs.
//
// A DFA state accepts iff its subset contains an NFA accept state. Each DFA
// state's origin set is its subset.
//
// Convert never fails on a validated automaton. Passing a DFA returns an
// isomorphic DFA restricted to the states reachable from start.
func Convert(nfa *automaton.Automaton) *automaton.Automaton {
	alphabet := nfa.Alphabet()
	accept := nfa.AcceptSet()
	b := automaton.NewBuilder(alphabet)

	ids := make(map[string]*subset)
	var queue []*subset

	discover := func(bits *bitset.BitSet) *subset {
		states := toStates(nfa, bits)
		key := subsetKey(states)
		if u, ok := ids[key]; ok {
			return u
		}
		u := &subset{id: automaton.State(len(ids)), bits: bits, states: states}
		ids[key] = u
		queue = append(queue, u)
		b.AddGeneratedState(u.id, bits.IntersectionCardinality(accept) > 0, states)
		return u
	}

	seed := bitset.New(uint(nfa.NumStates()))
	seed.Set(uint(nfa.StartIndex()))
	start := discover(closure(nfa, seed))
	b.SetStart(start.id)

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for k, sym := range alphabet {
			next := move(nfa, u.bits, k)
			if next.None() {
				continue
			}
			t := discover(closure(nfa, next))
			b.AddTransition(u.id, sym, t.id)
		}
	}
	return b.Build()
}

// subsetKey renders a canonical subset as a lookup key, e.g. "0,1,4".
func subsetKey(states []automaton.State) string {
	var sb strings.Builder
	for i, s := range states {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(s)))
	}
	return sb.String()
}
