package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/cache"
	"github.com/matzehuels/powerset/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.ResultTTL,
	}
}

// cachedResult is the cache payload of a run. Snapshots keep origin sets.
type cachedResult struct {
	DFA          automaton.Snapshot  `json:"dfa"`
	Intermediate *automaton.Snapshot `json:"intermediate,omitempty"`
}

// Execute runs the pipeline for opts.Operation with caching.
//
// Validation always runs, so warnings are reported on cache hits too. Only
// the engine output is cached, keyed by the validated NFA, so definitions
// that differ only in dropped entries share a cache entry.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	res, err := Parse(ctx, opts.Def)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		logger.Warn("dropped from definition", "kind", w.Kind, "detail", w.Message)
	}
	logger.Debug("validated definition",
		"states", res.NFA.NumStates(),
		"symbols", len(res.NFA.Alphabet()),
		"transitions", res.NFA.TransitionCount(),
		"duration", res.Stats.ParseTime)

	key := r.Keyer.ResultKey(opts.Operation, hashAutomaton(res.NFA))

	if !opts.Refresh {
		if r.loadCached(ctx, key, res) {
			logger.Debug("using cached result", "operation", opts.Operation)
			return res, nil
		}
	}

	transformStages(ctx, res, opts.Operation)
	logger.Info("transformed automaton",
		"operation", opts.Operation,
		"nfa_states", res.Stats.NFAStates,
		"dfa_states", res.Stats.DFAStates,
		"duration", res.Stats.ConvertTime+res.Stats.MinimizeTime)

	r.store(ctx, key, res)
	return res, nil
}

// Convert is a convenience wrapper that runs the convert operation.
func (r *Runner) Convert(ctx context.Context, def automaton.Def) (*Result, error) {
	return r.Execute(ctx, Options{Operation: OpConvert, Def: def})
}

// Minimize is a convenience wrapper that runs the minimize operation.
func (r *Runner) Minimize(ctx context.Context, def automaton.Def) (*Result, error) {
	return r.Execute(ctx, Options{Operation: OpMinimize, Def: def})
}

func (r *Runner) loadCached(ctx context.Context, key string, res *Result) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "result")
		return false
	}

	var cached cachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "error", err)
		observability.Cache().OnCacheMiss(ctx, "result")
		return false
	}
	dfa, err := cached.DFA.Restore()
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "result")
		return false
	}
	if cached.Intermediate != nil {
		if res.Intermediate, err = cached.Intermediate.Restore(); err != nil {
			res.Intermediate = nil
			observability.Cache().OnCacheMiss(ctx, "result")
			return false
		}
	}

	observability.Cache().OnCacheHit(ctx, "result")
	res.DFA = dfa
	res.Stats.DFAStates = dfa.NumStates()
	res.Stats.Transitions = dfa.TransitionCount()
	res.CacheHit = true
	return true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	cached := cachedResult{DFA: automaton.ToSnapshot(res.DFA)}
	if res.Intermediate != nil {
		s := automaton.ToSnapshot(res.Intermediate)
		cached.Intermediate = &s
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "result", len(data))
}

// RenderWithCacheInfo renders a with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, a *automaton.Automaton, opts RenderOptions) ([]byte, bool, error) {
	opts.SetDefaults()
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}
	key := r.Keyer.RenderKey(hashAutomaton(a), opts.KeyOpts())

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, true, nil // Cache hit
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	data, err := Render(ctx, a, opts)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.RenderTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	return data, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, a *automaton.Automaton, opts RenderOptions) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, a, opts)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// hashAutomaton hashes the canonical serialization of a, origins included.
func hashAutomaton(a *automaton.Automaton) string {
	data, _ := json.Marshal(automaton.ToSnapshot(a))
	return cache.Hash(data)
}
