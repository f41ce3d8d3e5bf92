// Package pkg provides the core libraries for powerset, a toolkit for
// turning nondeterministic finite automata into minimal deterministic ones.
//
// # Overview
//
// The pkg directory is organized into three areas:
//
//  1. Domain logic: [automaton] holds the automaton model and definition
//     format, [automaton/transform] the epsilon closure, subset
//     construction, and Moore minimization.
//  2. Orchestration: [pipeline] runs validate → convert → minimize with
//     caching, [io] reads and writes definitions, [render/nodelink] draws
//     automata with Graphviz.
//  3. Infrastructure: [cache], [config], [server], [observability],
//     [errors], and [buildinfo].
//
// # Architecture
//
//	Definition (JSON/YAML/TOML)
//	         ↓
//	    [automaton].Validate (drop bad references, collect warnings)
//	         ↓
//	    [automaton/transform].Convert (subset construction)
//	         ↓
//	    [automaton/transform].Minimize (partition refinement)
//	         ↓
//	    Definition / DOT / SVG / PNG
//
// # Quick Start
//
//	nfa, warnings, err := automaton.Validate(def)
//	if err != nil {
//	    return err
//	}
//	dfa := transform.Convert(nfa)
//	min := transform.Minimize(dfa)
//	out := automaton.ToDef(min)
//
// For cached end-to-end runs use [pipeline.Runner]:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Minimize(ctx, def)
//
// [automaton]: github.com/matzehuels/powerset/pkg/automaton
// [automaton/transform]: github.com/matzehuels/powerset/pkg/automaton/transform
// [pipeline]: github.com/matzehuels/powerset/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/powerset/pkg/pipeline#Runner
// [io]: github.com/matzehuels/powerset/pkg/io
// [render/nodelink]: github.com/matzehuels/powerset/pkg/render/nodelink
// [cache]: github.com/matzehuels/powerset/pkg/cache
// [config]: github.com/matzehuels/powerset/pkg/config
// [server]: github.com/matzehuels/powerset/pkg/server
// [observability]: github.com/matzehuels/powerset/pkg/observability
// [errors]: github.com/matzehuels/powerset/pkg/errors
// [buildinfo]: github.com/matzehuels/powerset/pkg/buildinfo
package pkg
