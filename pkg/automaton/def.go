package automaton

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Def is the serialized automaton definition exchanged with callers.
//
// JSON example:
//
//	{
//	  "states": [0, 1, 2],
//	  "alphabet": ["a", "b"],
//	  "transitions": [[0, "a", [0, 1]], [0, "b", 0], [1, "b", [2]]],
//	  "start": 0,
//	  "accept": [2]
//	}
type Def struct {
	States      []int           `json:"states" yaml:"states" toml:"states"`
	Alphabet    []string        `json:"alphabet" yaml:"alphabet" toml:"alphabet"`
	Transitions []DefTransition `json:"transitions" yaml:"transitions" toml:"transitions"`
	Start       int             `json:"start" yaml:"start" toml:"start"`
	Accept      []int           `json:"accept" yaml:"accept" toml:"accept"`
}

// DefTransition is one serialized transition. A nil Symbol denotes epsilon.
type DefTransition struct {
	From   int     `json:"from" yaml:"from" toml:"from"`
	Symbol *string `json:"symbol" yaml:"symbol" toml:"symbol,omitempty"`
	To     Targets `json:"to" yaml:"to" toml:"to"`
}

// Sym returns a pointer to s, for building DefTransition literals.
func Sym(s string) *string { return &s }

// MarshalJSON encodes the transition as a [from, symbol, to] triple.
func (t DefTransition) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{t.From, t.Symbol, t.To})
}

// UnmarshalJSON accepts either a [from, symbol, to] triple or an object with
// from/symbol/to fields.
func (t *DefTransition) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			From   *int    `json:"from"`
			Symbol *string `json:"symbol"`
			To     Targets `json:"to"`
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&obj); err != nil {
			return err
		}
		if obj.From == nil {
			return errMissingFrom
		}
		*t = DefTransition{From: *obj.From, Symbol: obj.Symbol, To: obj.To}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("transition must be an object or [from, symbol, to]: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("transition must have 3 elements, got %d", len(raw))
	}
	var out DefTransition
	from, err := decodeState(raw[0])
	if err != nil {
		return fmt.Errorf("transition from: %w", err)
	}
	out.From = from
	if err := json.Unmarshal(raw[1], &out.Symbol); err != nil {
		return fmt.Errorf("transition symbol: %w", err)
	}
	if err := json.Unmarshal(raw[2], &out.To); err != nil {
		return fmt.Errorf("transition to: %w", err)
	}
	*t = out
	return nil
}

// UnmarshalYAML decodes the object form. Unknown keys and a missing from are
// rejected.
func (t *DefTransition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: transition must be a mapping with from/symbol/to", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		switch k := value.Content[i]; k.Value {
		case "from", "symbol", "to":
		default:
			return fmt.Errorf("line %d: unknown transition field %q", k.Line, k.Value)
		}
	}
	var obj struct {
		From   *int    `yaml:"from"`
		Symbol *string `yaml:"symbol"`
		To     Targets `yaml:"to"`
	}
	if err := value.Decode(&obj); err != nil {
		return err
	}
	if obj.From == nil {
		return fmt.Errorf("line %d: %w", value.Line, errMissingFrom)
	}
	*t = DefTransition{From: *obj.From, Symbol: obj.Symbol, To: obj.To}
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler for a [[transitions]] table.
// Epsilon is written by omitting symbol.
func (t *DefTransition) UnmarshalTOML(v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("transition must be a table, got %T", v)
	}
	var out DefTransition
	for k, val := range m {
		switch k {
		case "from":
			n, ok := val.(int64)
			if !ok {
				return fmt.Errorf("transition from %v is not an integer", val)
			}
			out.From = int(n)
		case "symbol":
			sym, ok := val.(string)
			if !ok {
				return fmt.Errorf("transition symbol %v is not a string", val)
			}
			out.Symbol = &sym
		case "to":
			if err := out.To.UnmarshalTOML(val); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown transition field %q", k)
		}
	}
	if _, ok := m["from"]; !ok {
		return errMissingFrom
	}
	*t = out
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// Targets is the target list of a serialized transition. It decodes from a
// single state or a list of states and encodes a single target as a bare
// state, matching the DFA-style form.
type Targets []int

// MarshalJSON encodes one target as a number and anything else as a list.
func (t Targets) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(t))
}

// UnmarshalJSON accepts a number or a list of numbers.
func (t *Targets) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		list := make(Targets, len(raw))
		for i, r := range raw {
			s, err := decodeState(r)
			if err != nil {
				return fmt.Errorf("target %d: %w", i, err)
			}
			list[i] = s
		}
		*t = list
		return nil
	}
	one, err := decodeState(data)
	if err != nil {
		return fmt.Errorf("target must be a state or a list of states: %w", err)
	}
	*t = Targets{one}
	return nil
}

var (
	errNullState   = errors.New("state must be an integer, got null")
	errMissingFrom = errors.New("transition from is required")
)

// decodeState decodes one state id. JSON null would otherwise decode as 0.
func decodeState(data json.RawMessage) (int, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return 0, errNullState
	}
	var s int
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, err
	}
	return s, nil
}

// MarshalYAML mirrors MarshalJSON.
func (t Targets) MarshalYAML() (any, error) {
	if len(t) == 1 {
		return t[0], nil
	}
	return []int(t), nil
}

// UnmarshalYAML accepts a scalar or a sequence.
func (t *Targets) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		for _, n := range value.Content {
			if isNull(n) {
				return fmt.Errorf("line %d: %w", n.Line, errNullState)
			}
		}
		var list []int
		if err := value.Decode(&list); err != nil {
			return err
		}
		*t = list
	case yaml.ScalarNode:
		if isNull(value) {
			return fmt.Errorf("line %d: %w", value.Line, errNullState)
		}
		var one int
		if err := value.Decode(&one); err != nil {
			return err
		}
		*t = Targets{one}
	default:
		return fmt.Errorf("line %d: target must be a state or a list of states", value.Line)
	}
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (t *Targets) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		*t = Targets{int(x)}
	case []any:
		list := make(Targets, 0, len(x))
		for _, e := range x {
			n, ok := e.(int64)
			if !ok {
				return fmt.Errorf("target %v is not an integer", e)
			}
			list = append(list, int(n))
		}
		*t = list
	default:
		return fmt.Errorf("target must be a state or a list of states, got %T", v)
	}
	return nil
}

// ToDef serializes a. States and transitions are listed in the automaton's
// deterministic order; accept states are sorted.
func ToDef(a *Automaton) Def {
	d := Def{
		States:      make([]int, a.NumStates()),
		Alphabet:    make([]string, len(a.alphabet)),
		Transitions: []DefTransition{},
		Start:       int(a.Start()),
		Accept:      []int{},
	}
	for i, s := range a.ids {
		d.States[i] = int(s)
	}
	for k, sym := range a.alphabet {
		d.Alphabet[k] = string(sym)
	}
	for _, s := range a.Accept() {
		d.Accept = append(d.Accept, int(s))
	}
	for _, t := range a.Transitions() {
		dt := DefTransition{From: int(t.From), To: make(Targets, len(t.To))}
		if !t.Symbol.IsEpsilon() {
			dt.Symbol = Sym(string(t.Symbol))
		}
		for j, s := range t.To {
			dt.To[j] = int(s)
		}
		d.Transitions = append(d.Transitions, dt)
	}
	return d
}

// Snapshot is a Def together with the origin set of every state, listed in
// States order. Unlike a bare Def it restores a generated automaton exactly.
type Snapshot struct {
	Def
	Origins [][]int `json:"origins,omitempty" yaml:"origins,omitempty" toml:"origins,omitempty"`
}

// ToSnapshot serializes a including its origin sets, if it has any.
func ToSnapshot(a *Automaton) Snapshot {
	s := Snapshot{Def: ToDef(a)}
	if a.HasOrigins() {
		s.Origins = make([][]int, a.NumStates())
		for i, o := range a.origins {
			s.Origins[i] = make([]int, len(o))
			for j, q := range o {
				s.Origins[i][j] = int(q)
			}
		}
	}
	return s
}

// Restore rebuilds the automaton. A snapshot must describe a valid automaton
// verbatim: anything [Validate] would drop is an error here.
func (s Snapshot) Restore() (*Automaton, error) {
	a, warnings, err := Validate(s.Def)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		return nil, fmt.Errorf("snapshot is not canonical: %s", warnings[0].Message)
	}
	if len(s.Origins) == 0 {
		return a, nil
	}
	if len(s.Origins) != a.NumStates() {
		return nil, fmt.Errorf("snapshot has %d origin sets for %d states", len(s.Origins), a.NumStates())
	}

	b := NewBuilder(a.alphabet)
	for i, id := range a.ids {
		origin := make([]State, len(s.Origins[i]))
		for j, q := range s.Origins[i] {
			origin[j] = State(q)
		}
		b.AddGeneratedState(id, a.AcceptsIndex(i), origin)
	}
	b.SetStart(a.Start())
	for _, t := range a.Transitions() {
		b.AddTransition(t.From, t.Symbol, t.To...)
	}
	return b.Build(), nil
}
