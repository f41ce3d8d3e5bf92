package automaton

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Builder assembles an [Automaton]. States must be added before transitions
// that reference them. Transitions added twice for the same (state, symbol)
// pair are merged by set union.
//
// Builder is used by [Validate] and by the transformation engines. It panics
// on references to undeclared states or symbols; callers are expected to
// have checked their input already.
type Builder struct {
	ids       []State
	index     map[State]int
	alphabet  []Symbol
	symbols   map[Symbol]int
	start     int
	hasStart  bool
	accept    *bitset.BitSet
	delta     []map[int]*bitset.BitSet // per state: symbol position (-1 = epsilon) -> targets
	origins   [][]State
	generated bool
}

// NewBuilder creates a builder over the given alphabet. The alphabet must not
// contain duplicates or [Epsilon].
func NewBuilder(alphabet []Symbol) *Builder {
	b := &Builder{
		index:    make(map[State]int),
		alphabet: slices.Clone(alphabet),
		symbols:  make(map[Symbol]int, len(alphabet)),
		accept:   bitset.New(0),
	}
	for k, sym := range alphabet {
		if sym.IsEpsilon() {
			panic("automaton: epsilon in alphabet")
		}
		if _, dup := b.symbols[sym]; dup {
			panic(fmt.Sprintf("automaton: duplicate symbol %q", sym))
		}
		b.symbols[sym] = k
	}
	return b
}

// AddState declares state s. Adding an existing state only updates its
// accept flag.
func (b *Builder) AddState(s State, accept bool) *Builder {
	i, ok := b.index[s]
	if !ok {
		i = len(b.ids)
		b.index[s] = i
		b.ids = append(b.ids, s)
		b.delta = append(b.delta, nil)
		b.origins = append(b.origins, nil)
	}
	b.accept.SetTo(uint(i), accept)
	return b
}

// AddGeneratedState declares a generated state together with the source
// states it was built from.
func (b *Builder) AddGeneratedState(s State, accept bool, origin []State) *Builder {
	b.AddState(s, accept)
	o := slices.Clone(origin)
	slices.Sort(o)
	b.origins[b.index[s]] = slices.Compact(o)
	b.generated = true
	return b
}

// SetStart marks s as the start state.
func (b *Builder) SetStart(s State) *Builder {
	b.start = b.mustIndex(s)
	b.hasStart = true
	return b
}

// AddTransition adds edges from s to every state in to on sym. Use
// [Epsilon] for empty-string transitions.
func (b *Builder) AddTransition(from State, sym Symbol, to ...State) *Builder {
	i := b.mustIndex(from)
	k := -1
	if !sym.IsEpsilon() {
		var ok bool
		if k, ok = b.symbols[sym]; !ok {
			panic(fmt.Sprintf("automaton: unknown symbol %q", sym))
		}
	}
	if b.delta[i] == nil {
		b.delta[i] = make(map[int]*bitset.BitSet)
	}
	set := b.delta[i][k]
	if set == nil {
		set = bitset.New(uint(len(b.ids)))
		b.delta[i][k] = set
	}
	for _, t := range to {
		set.Set(uint(b.mustIndex(t)))
	}
	return b
}

// Build returns the finished automaton. It panics if no state was added or
// the start state was never set.
func (b *Builder) Build() *Automaton {
	if len(b.ids) == 0 {
		panic("automaton: no states")
	}
	if !b.hasStart {
		panic("automaton: start state not set")
	}

	a := &Automaton{
		ids:      slices.Clone(b.ids),
		index:    make(map[State]int, len(b.ids)),
		alphabet: slices.Clone(b.alphabet),
		symbols:  make(map[Symbol]int, len(b.alphabet)),
		start:    b.start,
		accept:   bitset.New(uint(len(b.ids))),
		delta:    make([][][]int, len(b.ids)),
		eps:      make([][]int, len(b.ids)),
	}
	for i, s := range a.ids {
		a.index[s] = i
	}
	for k, sym := range a.alphabet {
		a.symbols[sym] = k
	}
	for i, ok := b.accept.NextSet(0); ok && int(i) < len(a.ids); i, ok = b.accept.NextSet(i + 1) {
		a.accept.Set(i)
	}

	for i := range a.ids {
		a.delta[i] = make([][]int, len(a.alphabet))
		for k, set := range b.delta[i] {
			targets := a.sortedDense(set)
			if k < 0 {
				a.eps[i] = targets
			} else {
				a.delta[i][k] = targets
			}
		}
	}

	if b.generated {
		a.origins = make([][]State, len(a.ids))
		for i := range a.ids {
			a.origins[i] = slices.Clone(b.origins[i])
		}
	}
	return a
}

// sortedDense converts a bitset of dense indexes to a slice ordered by state id.
func (a *Automaton) sortedDense(set *bitset.BitSet) []int {
	if set == nil || set.None() {
		return nil
	}
	out := make([]int, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		out = append(out, int(i))
	}
	slices.SortFunc(out, func(x, y int) int { return int(a.ids[x]) - int(a.ids[y]) })
	return out
}

func (b *Builder) mustIndex(s State) int {
	i, ok := b.index[s]
	if !ok {
		panic(fmt.Sprintf("automaton: unknown state %d", s))
	}
	return i
}
