package automaton

import (
	"slices"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// State identifies an automaton state. Source automata use small
// non-negative integers; generated automata number their own states.
type State int

// Symbol is an input symbol of an automaton alphabet.
type Symbol string

// Epsilon is the empty-string marker. It never belongs to an alphabet.
const Epsilon Symbol = ""

// IsEpsilon reports whether s is the epsilon marker.
func (s Symbol) IsEpsilon() bool { return s == Epsilon }

// String returns the symbol, or "ε" for epsilon.
func (s Symbol) String() string {
	if s == Epsilon {
		return "ε"
	}
	return string(s)
}

// Transition is a single labeled edge set leaving one state. For a DFA, To
// holds exactly one state.
type Transition struct {
	From   State
	Symbol Symbol
	To     []State
}

// Automaton is an immutable finite automaton. The zero value is not usable;
// construct automata with [Validate] or [Builder].
//
// All accessors that return slices return fresh copies, so callers may modify
// the results freely.
type Automaton struct {
	ids      []State       // dense index -> state id
	index    map[State]int // state id -> dense index
	alphabet []Symbol
	symbols  map[Symbol]int
	start    int
	accept   *bitset.BitSet

	// delta[i][k] holds the dense targets of state i on alphabet symbol k,
	// sorted by state id.
	delta [][][]int
	eps   [][]int

	origins [][]State
}

// NumStates returns the number of states.
func (a *Automaton) NumStates() int { return len(a.ids) }

// States returns all state ids in dense index order.
func (a *Automaton) States() []State { return slices.Clone(a.ids) }

// StateAt returns the state id at dense index i.
func (a *Automaton) StateAt(i int) State { return a.ids[i] }

// IndexOf returns the dense index of state s.
func (a *Automaton) IndexOf(s State) (int, bool) {
	i, ok := a.index[s]
	return i, ok
}

// HasState reports whether s is a state of a.
func (a *Automaton) HasState(s State) bool {
	_, ok := a.index[s]
	return ok
}

// Alphabet returns the input symbols in declaration order.
func (a *Automaton) Alphabet() []Symbol { return slices.Clone(a.alphabet) }

// SymbolIndex returns the position of sym in the alphabet.
func (a *Automaton) SymbolIndex(sym Symbol) (int, bool) {
	k, ok := a.symbols[sym]
	return k, ok
}

// Start returns the start state.
func (a *Automaton) Start() State { return a.ids[a.start] }

// StartIndex returns the dense index of the start state.
func (a *Automaton) StartIndex() int { return a.start }

// IsAccept reports whether s is an accepting state.
func (a *Automaton) IsAccept(s State) bool {
	i, ok := a.index[s]
	return ok && a.accept.Test(uint(i))
}

// AcceptsIndex reports whether the state at dense index i is accepting.
func (a *Automaton) AcceptsIndex(i int) bool { return a.accept.Test(uint(i)) }

// AcceptSet returns a copy of the accepting states as a bitset over dense
// indexes.
func (a *Automaton) AcceptSet() *bitset.BitSet { return a.accept.Clone() }

// Accept returns the accepting states sorted by id.
func (a *Automaton) Accept() []State {
	out := make([]State, 0, a.accept.Count())
	for i, ok := a.accept.NextSet(0); ok; i, ok = a.accept.NextSet(i + 1) {
		out = append(out, a.ids[i])
	}
	slices.Sort(out)
	return out
}

// Step returns the dense targets of the state at dense index i on the
// alphabet symbol at position k. The result must not be modified.
func (a *Automaton) Step(i, k int) []int { return a.delta[i][k] }

// EpsilonStep returns the dense epsilon targets of the state at dense
// index i. The result must not be modified.
func (a *Automaton) EpsilonStep(i int) []int { return a.eps[i] }

// Targets returns the states reachable from s on sym in one step, sorted by
// id. Passing [Epsilon] returns the epsilon targets.
func (a *Automaton) Targets(s State, sym Symbol) []State {
	i, ok := a.index[s]
	if !ok {
		return nil
	}
	var dense []int
	if sym.IsEpsilon() {
		dense = a.eps[i]
	} else {
		k, ok := a.symbols[sym]
		if !ok {
			return nil
		}
		dense = a.delta[i][k]
	}
	return a.idsOf(dense)
}

// Next returns the unique target of s on sym for deterministic transitions.
// The second result is false when no transition exists.
func (a *Automaton) Next(s State, sym Symbol) (State, bool) {
	targets := a.Targets(s, sym)
	if len(targets) == 0 {
		return 0, false
	}
	return targets[0], true
}

// Origin returns the source states a generated state was built from, sorted
// by id. Source automata have no origins.
func (a *Automaton) Origin(s State) []State {
	i, ok := a.index[s]
	if !ok || a.origins == nil {
		return nil
	}
	return slices.Clone(a.origins[i])
}

// HasOrigins reports whether a is a generated automaton carrying origin sets.
func (a *Automaton) HasOrigins() bool { return a.origins != nil }

// HasEpsilon reports whether any epsilon transition exists.
func (a *Automaton) HasEpsilon() bool {
	for _, targets := range a.eps {
		if len(targets) > 0 {
			return true
		}
	}
	return false
}

// IsDeterministic reports whether a has no epsilon transitions and at most
// one target per (state, symbol) pair.
func (a *Automaton) IsDeterministic() bool {
	if a.HasEpsilon() {
		return false
	}
	for _, row := range a.delta {
		for _, targets := range row {
			if len(targets) > 1 {
				return false
			}
		}
	}
	return true
}

// Transitions returns every transition in a deterministic order: states in
// dense order, then epsilon, then alphabet symbols in declaration order.
func (a *Automaton) Transitions() []Transition {
	var out []Transition
	for i := range a.ids {
		if len(a.eps[i]) > 0 {
			out = append(out, Transition{From: a.ids[i], Symbol: Epsilon, To: a.idsOf(a.eps[i])})
		}
		for k, sym := range a.alphabet {
			if len(a.delta[i][k]) > 0 {
				out = append(out, Transition{From: a.ids[i], Symbol: sym, To: a.idsOf(a.delta[i][k])})
			}
		}
	}
	return out
}

// TransitionCount returns the number of (state, symbol) pairs with at least
// one target.
func (a *Automaton) TransitionCount() int {
	n := 0
	for i := range a.ids {
		if len(a.eps[i]) > 0 {
			n++
		}
		for k := range a.alphabet {
			if len(a.delta[i][k]) > 0 {
				n++
			}
		}
	}
	return n
}

// String returns a compact single-line description, useful in logs and
// test failures.
func (a *Automaton) String() string {
	var b strings.Builder
	b.WriteString("states=")
	b.WriteString(FormatSet(a.ids))
	b.WriteString(" start=")
	b.WriteString(strconv.Itoa(int(a.Start())))
	b.WriteString(" accept=")
	b.WriteString(FormatSet(a.Accept()))
	for _, t := range a.Transitions() {
		b.WriteString(" ")
		b.WriteString(strconv.Itoa(int(t.From)))
		b.WriteString("-")
		b.WriteString(t.Symbol.String())
		b.WriteString("->")
		b.WriteString(FormatSet(t.To))
	}
	return b.String()
}

// FormatSet renders states as "{0,1,2}".
func FormatSet(states []State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = strconv.Itoa(int(s))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func (a *Automaton) idsOf(dense []int) []State {
	if len(dense) == 0 {
		return nil
	}
	out := make([]State, len(dense))
	for j, i := range dense {
		out[j] = a.ids[i]
	}
	return out
}
