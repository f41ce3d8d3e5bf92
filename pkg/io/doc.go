// Package io reads and writes automaton definitions as JSON, YAML, or TOML.
//
// # Overview
//
// A definition is the serialized form of an automaton, [automaton.Def]. The
// three formats carry the same fields:
//
//	{
//	  "states": [0, 1, 2],
//	  "alphabet": ["a", "b"],
//	  "transitions": [[0, "a", [0, 1]], [0, "b", 0], [1, "b", 2]],
//	  "start": 0,
//	  "accept": [2]
//	}
//
// In JSON a transition is a [from, symbol, to] triple; a null symbol is an
// epsilon transition. The object form {"from": 0, "symbol": "a", "to": [0, 1]}
// is accepted on input. YAML uses the object form. TOML uses an array of
// tables and expresses epsilon by leaving out the symbol key:
//
//	states = [0, 1]
//	alphabet = ["a"]
//	start = 0
//	accept = [1]
//
//	[[transitions]]
//	from = 0
//	to = [1]
//
// # Import
//
// Use [ImportDef] to read a file, picking the format from its extension, or
// [ReadDef] to read from any io.Reader in a named format:
//
//	def, err := io.ImportDef("nfa.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Decoding only checks syntax. Semantic checks (unknown states, symbols) are
// the job of [automaton.Validate].
//
// # Export
//
// Use [ExportDef] to write a file or [WriteDef] to write to any io.Writer.
// JSON output is indented with two spaces.
//
// [automaton.Def]: github.com/matzehuels/powerset/pkg/automaton.Def
// [automaton.Validate]: github.com/matzehuels/powerset/pkg/automaton.Validate
package io
