package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/errors"
)

func endsWithAB() automaton.Def {
	return automaton.Def{
		States:   []int{0, 1, 2},
		Alphabet: []string{"a", "b"},
		Transitions: []automaton.DefTransition{
			{From: 0, Symbol: automaton.Sym("a"), To: automaton.Targets{0, 1}},
			{From: 0, Symbol: automaton.Sym("b"), To: automaton.Targets{0}},
			{From: 1, Symbol: automaton.Sym("b"), To: automaton.Targets{2}},
			{From: 2, To: automaton.Targets{0}},
		},
		Start:  0,
		Accept: []int{2},
	}
}

func TestReadDef(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{
			name:   "json triples",
			format: JSON,
			input: `{"states":[0,1,2],"alphabet":["a","b"],
				"transitions":[[0,"a",[0,1]],[0,"b",0],[1,"b",[2]],[2,null,0]],
				"start":0,"accept":[2]}`,
		},
		{
			name:   "json objects",
			format: JSON,
			input: `{"states":[0,1,2],"alphabet":["a","b"],
				"transitions":[{"from":0,"symbol":"a","to":[0,1]},{"from":0,"symbol":"b","to":0},
				{"from":1,"symbol":"b","to":2},{"from":2,"symbol":null,"to":[0]}],
				"start":0,"accept":[2]}`,
		},
		{
			name:   "yaml",
			format: YAML,
			input: `
states: [0, 1, 2]
alphabet: [a, b]
transitions:
  - {from: 0, symbol: a, to: [0, 1]}
  - {from: 0, symbol: b, to: 0}
  - {from: 1, symbol: b, to: [2]}
  - {from: 2, to: 0}
start: 0
accept: [2]
`,
		},
		{
			name:   "toml",
			format: TOML,
			input: `
states = [0, 1, 2]
alphabet = ["a", "b"]
start = 0
accept = [2]

[[transitions]]
from = 0
symbol = "a"
to = [0, 1]

[[transitions]]
from = 0
symbol = "b"
to = 0

[[transitions]]
from = 1
symbol = "b"
to = [2]

[[transitions]]
from = 2
to = 0
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadDef(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadDef() error: %v", err)
			}
			if want := endsWithAB(); !reflect.DeepEqual(got, want) {
				t.Errorf("ReadDef() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestReadDef_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"malformed json", JSON, `{"states": [0,`},
		{"unknown json field", JSON, `{"states":[0],"start":0,"accepts":[0]}`},
		{"empty json", JSON, ``},
		{"bad triple", JSON, `{"states":[0],"transitions":[[0,"a"]],"start":0}`},
		{"unknown yaml field", YAML, "states: [0]\nstart: 0\naccepts: [0]\n"},
		{"bad toml", TOML, `states = [0`},
		{"json null target", JSON, `{"states":[0,1],"transitions":[[1,"a",null]],"start":0}`},
		{"yaml missing from", YAML, "states: [0, 1]\nstart: 0\ntransitions:\n  - {symbol: a, to: 1}\n"},
		{"yaml null target", YAML, "states: [0, 1]\nstart: 0\ntransitions:\n  - {from: 0, symbol: a, to: null}\n"},
		{"toml missing from", TOML, "states = [0, 1]\nstart = 0\n\n[[transitions]]\nsymbol = \"a\"\nto = 1\n"},
		{"toml unknown transition field", TOML, "states = [0, 1]\nstart = 0\n\n[[transitions]]\nfrom = 0\nsym = \"a\"\nto = 1\n"},
		{"unsupported", Format("xml"), `<nfa/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDef(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("ReadDef() error = %v, want %s", err, errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestWriteDef_RoundTrip(t *testing.T) {
	for _, f := range []Format{JSON, YAML, TOML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteDef(endsWithAB(), &buf, f); err != nil {
				t.Fatalf("WriteDef() error: %v", err)
			}
			got, err := ReadDef(&buf, f)
			if err != nil {
				t.Fatalf("ReadDef() error: %v\n%s", err, buf.String())
			}
			if want := endsWithAB(); !reflect.DeepEqual(got, want) {
				t.Errorf("round trip = %+v, want %+v", got, want)
			}
		})
	}
}

func TestWriteDef_JSONLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDef(endsWithAB(), &buf, JSON); err != nil {
		t.Fatalf("WriteDef() error: %v", err)
	}
	want := `{
  "states": [0,1,2],
  "alphabet": ["a","b"],
  "transitions": [
    [0,"a",[0,1]],
    [0,"b",0],
    [1,"b",2],
    [2,null,0]
  ],
  "start": 0,
  "accept": [2]
}
`
	if buf.String() != want {
		t.Errorf("WriteDef() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteDef_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	def := automaton.Def{States: []int{0}, Alphabet: []string{}, Transitions: []automaton.DefTransition{}, Accept: []int{}}
	if err := WriteDef(def, &buf, JSON); err != nil {
		t.Fatalf("WriteDef() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"transitions": [],`) {
		t.Errorf("empty transitions should be written inline:\n%s", buf.String())
	}
	if _, err := ReadDef(&buf, JSON); err != nil {
		t.Errorf("ReadDef() error: %v", err)
	}
}

func TestImportExportDef(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"nfa.json", "nfa.yaml", "nfa.yml", "nfa.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := ExportDef(endsWithAB(), path); err != nil {
				t.Fatalf("ExportDef() error: %v", err)
			}
			got, err := ImportDef(path)
			if err != nil {
				t.Fatalf("ImportDef() error: %v", err)
			}
			if want := endsWithAB(); !reflect.DeepEqual(got, want) {
				t.Errorf("ImportDef() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestImportDef_NotFound(t *testing.T) {
	_, err := ImportDef(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportDef() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.json":     JSON,
		"a.YAML":     YAML,
		"a.yml":      YAML,
		"dir/a.toml": TOML,
		"a":          JSON,
		"a.txt":      JSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", path, got, want)
		}
	}
}
