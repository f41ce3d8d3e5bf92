package automaton

import (
	"errors"
	"fmt"
)

// ErrNoStates and ErrUnknownStart are the hard validation failures. They are
// always returned wrapped in a [*ValidationError].
var (
	ErrNoStates     = errors.New("automaton has no states")
	ErrUnknownStart = errors.New("start state is not declared")
)

// ValidationError reports a definition that cannot be turned into an
// automaton at all.
type ValidationError struct {
	Err    error
	Detail string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

// Unwrap returns the sentinel cause.
func (e *ValidationError) Unwrap() error { return e.Err }

// WarningKind classifies a normalization decision taken by [Validate].
type WarningKind string

const (
	WarnDroppedState      WarningKind = "dropped_state"
	WarnDroppedSymbol     WarningKind = "dropped_symbol"
	WarnDroppedAccept     WarningKind = "dropped_accept"
	WarnDroppedTransition WarningKind = "dropped_transition"
	WarnDroppedTarget     WarningKind = "dropped_target"
)

// Warning describes part of a definition that was dropped during
// validation. Warnings never fail a request.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string { return string(w.Kind) + ": " + w.Message }

// Validate checks def and builds the corresponding automaton.
//
// Checks run in this order: the state set must be non-empty, the start state
// must be declared, accept states must be declared, transition endpoints must
// be declared, and non-epsilon transition symbols must be in the alphabet.
// Only the first two are hard failures. Everything else that references an
// unknown state or symbol is dropped and reported as a [Warning]:
//
//   - a transition with an unknown source or symbol is dropped
//   - unknown targets are removed; a transition left with no targets is dropped
//   - duplicate or negative states and duplicate or empty symbols are ignored
//
// Multiple transitions for the same (state, symbol) pair are merged by set
// union of their targets.
func Validate(def Def) (*Automaton, []Warning, error) {
	var warnings []Warning
	warn := func(kind WarningKind, format string, args ...any) {
		warnings = append(warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	states := make([]State, 0, len(def.States))
	declared := make(map[State]bool, len(def.States))
	for _, s := range def.States {
		switch {
		case s < 0:
			warn(WarnDroppedState, "state %d is negative", s)
		case declared[State(s)]:
			warn(WarnDroppedState, "state %d is declared more than once", s)
		default:
			declared[State(s)] = true
			states = append(states, State(s))
		}
	}
	if len(states) == 0 {
		return nil, warnings, &ValidationError{Err: ErrNoStates}
	}
	if !declared[State(def.Start)] {
		return nil, warnings, &ValidationError{
			Err:    ErrUnknownStart,
			Detail: fmt.Sprintf("start state %d is not in states %s", def.Start, FormatSet(states)),
		}
	}

	alphabet := make([]Symbol, 0, len(def.Alphabet))
	known := make(map[Symbol]bool, len(def.Alphabet))
	for _, raw := range def.Alphabet {
		sym := Symbol(raw)
		switch {
		case sym.IsEpsilon():
			warn(WarnDroppedSymbol, "empty symbol in alphabet")
		case known[sym]:
			warn(WarnDroppedSymbol, "symbol %q is declared more than once", raw)
		default:
			known[sym] = true
			alphabet = append(alphabet, sym)
		}
	}

	b := NewBuilder(alphabet)
	accepting := make(map[State]bool, len(def.Accept))
	for _, s := range def.Accept {
		if !declared[State(s)] {
			warn(WarnDroppedAccept, "accept state %d is not declared", s)
			continue
		}
		accepting[State(s)] = true
	}
	for _, s := range states {
		b.AddState(s, accepting[s])
	}
	b.SetStart(State(def.Start))

	for n, t := range def.Transitions {
		from := State(t.From)
		label := describe(n, t)
		if !declared[from] {
			warn(WarnDroppedTransition, "%s: source state %d is not declared", label, t.From)
			continue
		}

		sym := Epsilon
		if t.Symbol != nil {
			sym = Symbol(*t.Symbol)
			if !known[sym] {
				warn(WarnDroppedTransition, "%s: symbol %q is not in the alphabet", label, *t.Symbol)
				continue
			}
		}

		targets := make([]State, 0, len(t.To))
		for _, to := range t.To {
			if !declared[State(to)] {
				warn(WarnDroppedTarget, "%s: target state %d is not declared", label, to)
				continue
			}
			targets = append(targets, State(to))
		}
		if len(targets) == 0 {
			warn(WarnDroppedTransition, "%s: no valid target states", label)
			continue
		}
		b.AddTransition(from, sym, targets...)
	}

	return b.Build(), warnings, nil
}

func describe(n int, t DefTransition) string {
	sym := "null"
	if t.Symbol != nil {
		sym = fmt.Sprintf("%q", *t.Symbol)
	}
	return fmt.Sprintf("transition #%d (%d, %s)", n, t.From, sym)
}
