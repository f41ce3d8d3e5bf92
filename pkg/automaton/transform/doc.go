// Package transform implements the automaton transformation engines:
// epsilon closure, subset construction, and minimization.
//
// # Engines
//
//   - [Closure]: the set of states reachable through epsilon transitions.
//   - [Convert]: subset (powerset) construction from an NFA to a DFA.
//   - [Minimize]: reachability pruning followed by Moore partition
//     refinement, producing the unique minimal DFA.
//
// Every function is pure: it reads its input automaton and returns a new one.
// Inputs are never modified, there is no shared state, and any number of
// calls may run concurrently.
//
// # Typical Usage
//
//	nfa, _, err := automaton.Validate(def)
//	if err != nil {
//	    return err
//	}
//	dfa := transform.Convert(nfa)
//	min := transform.Minimize(dfa)
//
// # Determinism
//
// Output numbering never depends on map iteration order. [Convert] numbers
// DFA states in breadth-first discovery order starting at 0, visiting symbols
// in alphabet order. [Minimize] labels each block with the smallest state id
// it contains.
//
// # Cost
//
// Subset construction is exponential in the worst case: an NFA with n states
// can produce up to 2^n DFA states. The engines do not bound their own work;
// callers limit input size instead (see pipeline.Options.MaxStates).
package transform
