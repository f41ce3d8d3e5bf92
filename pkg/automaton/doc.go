// Package automaton provides the finite automaton model shared by every stage of
// the powerset pipeline.
//
// # Overview
//
// An [Automaton] is an immutable value describing a nondeterministic (NFA) or
// deterministic (DFA) finite automaton over a finite alphabet of string
// [Symbol] values. NFAs may contain epsilon transitions, written with the
// distinguished [Epsilon] symbol.
//
// Automata are built in one of two ways:
//
//   - [Validate] turns a user-authored [Def] into an Automaton, dropping
//     references to unknown states or symbols with a [Warning] and failing
//     only when the state set is empty or the start state is undeclared.
//   - [Builder] assembles generated automata inside the transformation
//     engines (see package transform). Generated states carry an origin set
//     naming the source states they were derived from.
//
// # Dense Indexes
//
// Each state also has a dense index in 0..NumStates()-1, assigned in
// declaration order. The engines work on dense indexes so that state sets can
// be represented as bitsets:
//
//	for i := 0; i < a.NumStates(); i++ {
//	    for sym := range a.Alphabet() {
//	        targets := a.Step(i, sym)
//	        ...
//	    }
//	}
//
// # Serialization
//
// [Def] is the serialized shape that crosses process boundaries. JSON encodes
// transitions as [from, symbol, to] triples, where a null symbol denotes
// epsilon and "to" is either one state or a list of states. Use [ToDef] to
// serialize any Automaton.
package automaton
