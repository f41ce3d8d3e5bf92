package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/errors"
	"github.com/matzehuels/powerset/pkg/observability"
)

// Parse validates a raw definition into the NFA that later stages work on.
// The returned Result has NFA, Warnings, and the parse stats filled in.
//
// A definition without states or with an undeclared start state fails with
// INVALID_AUTOMATON. Every other problem is dropped and reported as a
// warning.
func Parse(ctx context.Context, def automaton.Def) (*Result, error) {
	start := time.Now()
	nfa, warnings, err := automaton.Validate(def)
	elapsed := time.Since(start)

	states := 0
	if nfa != nil {
		states = nfa.NumStates()
	}
	observability.Pipeline().OnValidate(ctx, states, len(warnings), err)

	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAutomaton, err, "invalid automaton")
	}
	return &Result{
		NFA:      nfa,
		Warnings: warnings,
		Stats: Stats{
			NFAStates: nfa.NumStates(),
			ParseTime: elapsed,
		},
	}, nil
}
