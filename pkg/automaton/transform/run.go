package transform

import (
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/powerset/pkg/automaton"
)

// Accepts reports whether a accepts word. It simulates the automaton on the
// set of current states, so it works for NFAs (epsilon edges included) and
// partial DFAs alike. A symbol outside the alphabet rejects the word.
func Accepts(a *automaton.Automaton, word []automaton.Symbol) bool {
	current := bitset.New(uint(a.NumStates()))
	current.Set(uint(a.StartIndex()))
	current = closure(a, current)

	for _, sym := range word {
		k, ok := a.SymbolIndex(sym)
		if !ok {
			return false
		}
		current = closure(a, move(a, current, k))
		if current.None() {
			return false
		}
	}
	return current.IntersectionCardinality(a.AcceptSet()) > 0
}

// Words splits s into symbols of a's alphabet, so multi-character symbols
// can be written without separators. Longer symbols are tried first and the
// split backtracks when a choice leaves a remainder that cannot be split, so
// a valid split is found whenever one exists. The second result is false if
// s has no split.
func Words(a *automaton.Automaton, s string) ([]automaton.Symbol, bool) {
	symbols := slices.Clone(a.Alphabet())
	slices.SortStableFunc(symbols, func(x, y automaton.Symbol) int { return len(y) - len(x) })

	// dead[i] marks suffixes s[i:] already known to have no split.
	dead := make([]bool, len(s)+1)
	var out []automaton.Symbol
	var split func(i int) bool
	split = func(i int) bool {
		if i == len(s) {
			return true
		}
		if dead[i] {
			return false
		}
		for _, sym := range symbols {
			if sym == automaton.Epsilon || !strings.HasPrefix(s[i:], string(sym)) {
				continue
			}
			out = append(out, sym)
			if split(i + len(sym)) {
				return true
			}
			out = out[:len(out)-1]
		}
		dead[i] = true
		return false
	}

	if !split(0) {
		return nil, false
	}
	return out, true
}
