package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/errors"
)

// Format names a definition encoding.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ParseFormat normalizes a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	if err := errors.ValidateFormat(s); err != nil {
		return "", err
	}
	switch f := strings.ToLower(s); f {
	case "yml":
		return YAML, nil
	default:
		return Format(f), nil
	}
}

// FormatFromPath picks the format from a file extension. Unknown extensions
// fall back to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return JSON
}

// ReadDef decodes a definition in format f from r.
//
// Unknown JSON and YAML fields are rejected so that typos ("accepts") surface
// instead of silently producing an automaton without accept states. ReadDef
// does not close r.
func ReadDef(r io.Reader, f Format) (automaton.Def, error) {
	var def automaton.Def
	var err error
	switch f {
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&def)
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&def)
	case TOML:
		_, err = toml.NewDecoder(r).Decode(&def)
	default:
		return def, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
	if err != nil {
		if err == io.EOF {
			return def, errors.New(errors.ErrCodeInvalidFormat, "empty %s document", f)
		}
		return def, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", f)
	}
	return def, nil
}

// ImportDef reads the definition file at path. The format follows the file
// extension (.json, .yaml, .yml, .toml).
func ImportDef(path string) (automaton.Def, error) {
	if err := errors.ValidatePath(path); err != nil {
		return automaton.Def{}, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return automaton.Def{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return automaton.Def{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDef(f, FormatFromPath(path))
}
