package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/errors"
)

// WriteDef encodes def in format f and writes it to w.
// The output can be re-imported with [ReadDef].
func WriteDef(def automaton.Def, w io.Writer, f Format) error {
	var err error
	switch f {
	case JSON:
		err = writeJSON(def, w)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(def)
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
	case TOML:
		err = toml.NewEncoder(w).Encode(def)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// writeJSON writes one top-level field per line and one transition per line.
// Lists stay compact so that large automata remain readable.
func writeJSON(def automaton.Def, w io.Writer) error {
	var b bytes.Buffer
	field := func(name string, v any, last bool) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "  %q: %s", name, data)
		if !last {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
		return nil
	}

	b.WriteString("{\n")
	if err := field("states", orEmpty(def.States), false); err != nil {
		return err
	}
	if err := field("alphabet", orEmpty(def.Alphabet), false); err != nil {
		return err
	}
	if len(def.Transitions) == 0 {
		b.WriteString("  \"transitions\": [],\n")
	} else {
		b.WriteString("  \"transitions\": [\n")
		for i, t := range def.Transitions {
			data, err := json.Marshal(t)
			if err != nil {
				return err
			}
			b.WriteString("    ")
			b.Write(data)
			if i < len(def.Transitions)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString("  ],\n")
	}
	if err := field("start", def.Start, false); err != nil {
		return err
	}
	if err := field("accept", orEmpty(def.Accept), true); err != nil {
		return err
	}
	b.WriteString("}\n")

	_, err := w.Write(b.Bytes())
	return err
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ExportDef writes def to the file at path in the format its extension names.
// This is a convenience wrapper around [WriteDef] for file-based output.
func ExportDef(def automaton.Def, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDef(def, f, FormatFromPath(path))
}

// WriteAutomaton serializes a and writes it in format f.
func WriteAutomaton(a *automaton.Automaton, w io.Writer, f Format) error {
	return WriteDef(automaton.ToDef(a), w, f)
}
