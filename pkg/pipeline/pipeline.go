// Package pipeline provides the validate → convert → minimize pipeline for
// powerset.
//
// This package is the single entry point used by the CLI and the HTTP API.
// By centralizing the stage sequencing here, both front ends apply the same
// limits, logging, and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: validate the raw definition into an NFA, dropping bad references
//  2. Convert: subset construction into a DFA
//  3. Minimize: partition refinement of that DFA (minimize operation only)
//
// [Render] turns any stage's automaton into DOT, SVG, or PNG.
//
// # Usage
//
// The pure functions run without cache or limits:
//
//	res, err := pipeline.Minimize(def)
//	fmt.Println(res.DFA)
//
// A Runner adds caching, limits, and logging:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Operation: pipeline.OpMinimize,
//	    Def:       def,
//	})
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/automaton/transform"
	"github.com/matzehuels/powerset/pkg/errors"
	"github.com/matzehuels/powerset/pkg/observability"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxStates bounds the number of declared NFA states. Subset
	// construction can produce up to 2^n DFA states, so the bound is kept
	// small.
	DefaultMaxStates = 64

	// DefaultOperation is used when Options.Operation is empty.
	DefaultOperation = OpConvert
)

// Operations.
const (
	OpConvert  = "convert"
	OpMinimize = "minimize"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	Operation string        `json:"operation"`
	Def       automaton.Def `json:"definition"`
	MaxStates int           `json:"max_states,omitempty"`
	Refresh   bool          `json:"refresh,omitempty"` // bypass cached results

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// NFA is the validated input, after invalid references were dropped.
	NFA *automaton.Automaton

	// DFA is the final automaton: the subset construction for convert, the
	// minimal DFA for minimize.
	DFA *automaton.Automaton

	// Intermediate is the unminimized DFA of a minimize run; nil for convert.
	Intermediate *automaton.Automaton

	// Warnings lists everything validation dropped.
	Warnings []automaton.Warning

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the engine output came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NFAStates    int
	DFAStates    int
	Transitions  int
	ParseTime    time.Duration
	ConvertTime  time.Duration
	MinimizeTime time.Duration
}

// SetDefaults fills in empty fields.
func (o *Options) SetDefaults() {
	if o.Operation == "" {
		o.Operation = DefaultOperation
	}
	if o.MaxStates == 0 {
		o.MaxStates = DefaultMaxStates
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and checks the operation and limits.
func (o *Options) Validate() error {
	o.SetDefaults()
	if err := errors.ValidateOperation(o.Operation); err != nil {
		return err
	}
	if o.MaxStates < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_states must be positive, got %d", o.MaxStates)
	}
	return errors.ValidateLimit("NFA states", len(o.Def.States), o.MaxStates)
}

// =============================================================================
// Pure entry points
// =============================================================================

// Convert validates def and determinizes it. No limits apply.
func Convert(def automaton.Def) (*Result, error) {
	return run(context.Background(), def, OpConvert)
}

// Minimize validates def, determinizes it, and minimizes the result.
// No limits apply.
func Minimize(def automaton.Def) (*Result, error) {
	return run(context.Background(), def, OpMinimize)
}

func run(ctx context.Context, def automaton.Def, op string) (*Result, error) {
	res, err := Parse(ctx, def)
	if err != nil {
		return nil, err
	}
	transformStages(ctx, res, op)
	return res, nil
}

// transformStages runs the engines on res.NFA and fills in the rest of res.
func transformStages(ctx context.Context, res *Result, op string) {
	hooks := observability.Pipeline()

	hooks.OnConvertStart(ctx, res.NFA.NumStates())
	start := time.Now()
	dfa := transform.Convert(res.NFA)
	res.Stats.ConvertTime = time.Since(start)
	hooks.OnConvertComplete(ctx, dfa.NumStates(), res.Stats.ConvertTime, nil)

	if op == OpMinimize {
		hooks.OnMinimizeStart(ctx, dfa.NumStates())
		start = time.Now()
		res.Intermediate = dfa
		dfa = transform.Minimize(dfa)
		res.Stats.MinimizeTime = time.Since(start)
		hooks.OnMinimizeComplete(ctx, dfa.NumStates(), res.Stats.MinimizeTime, nil)
	}

	res.DFA = dfa
	res.Stats.DFAStates = dfa.NumStates()
	res.Stats.Transitions = dfa.TransitionCount()
}
