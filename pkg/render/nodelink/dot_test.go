package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/powerset/pkg/automaton"
)

func sample() *automaton.Automaton {
	return automaton.NewBuilder([]automaton.Symbol{"a", "b"}).
		AddGeneratedState(0, false, []automaton.State{0}).
		AddGeneratedState(1, true, []automaton.State{0, 1}).
		SetStart(0).
		AddTransition(0, "a", 1).
		AddTransition(0, "b", 1).
		AddTransition(0, automaton.Epsilon, 1).
		AddTransition(1, "a", 1).
		Build()
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G",
		`"q0" [label="q0"]`,
		`"q1" [label="q1", shape=doublecircle]`,
		`__start [shape=point, style=invis]`,
		`__start -> "q0"`,
		`"q0" -> "q1" [label="ε,a,b"]`,
		`"q1" -> "q1" [label="a"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s:\n%s", want, dot)
		}
	}
	if strings.Count(dot, `"q0" -> "q1"`) != 1 {
		t.Errorf("ToDOT() should merge parallel edges:\n%s", dot)
	}
}

func TestToDOT_Origins(t *testing.T) {
	dot := ToDOT(sample(), Options{Origins: true, Title: "DFA"})

	if !strings.Contains(dot, `label="q1\n{0,1}"`) {
		t.Errorf("ToDOT() missing origin label:\n%s", dot)
	}
	if !strings.Contains(dot, `label="DFA"`) {
		t.Errorf("ToDOT() missing title:\n%s", dot)
	}
}

func TestToDOT_OriginsIgnoredForSource(t *testing.T) {
	a, _, err := automaton.Validate(automaton.Def{States: []int{3}, Start: 3})
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	dot := ToDOT(a, Options{Origins: true})
	if !strings.Contains(dot, `"q3" [label="q3"]`) {
		t.Errorf("ToDOT() = %s", dot)
	}
}

func TestFmtLabel(t *testing.T) {
	a := sample()
	if got := fmtLabel(a, 1, false); got != "q1" {
		t.Errorf("fmtLabel() = %q, want %q", got, "q1")
	}
	if got := fmtLabel(a, 1, true); got != "q1\n{0,1}" {
		t.Errorf("fmtLabel() = %q, want %q", got, "q1\n{0,1}")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`
	if !strings.HasPrefix(out, want) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() without viewBox changed input: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
}

func TestRenderSVG_BadDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("RenderSVG() should fail on malformed DOT")
	}
}
