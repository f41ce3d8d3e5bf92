package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/powerset/pkg/automaton"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Origins adds each state's origin set below its name, e.g. "q1\n{0,1}".
	// Ignored for automata without origins.
	Origins bool

	// Title is drawn above the diagram when non-empty.
	Title string
}

// ToDOT converts an automaton to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// States are named q<id> and drawn as circles; accepting states use double
// circles. The start state is marked by an arrow from an invisible node.
// Parallel edges between the same pair of states are merged into one edge
// whose label lists the symbols, comma separated, epsilon first and then in
// alphabet order. Epsilon is written as ε.
func ToDOT(a *automaton.Automaton, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	buf.WriteString("  __start [shape=point, style=invis];\n")
	for _, s := range a.States() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(a, s, opts.Origins))}
		if a.IsAccept(s) {
			attrs = append(attrs, "shape=doublecircle")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(s), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  __start -> %q;\n", nodeID(a.Start()))
	for _, e := range groupEdges(a) {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", nodeID(e.from), nodeID(e.to), strings.Join(e.symbols, ","))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(s automaton.State) string {
	return "q" + strconv.Itoa(int(s))
}

func fmtLabel(a *automaton.Automaton, s automaton.State, origins bool) string {
	if !origins || !a.HasOrigins() {
		return nodeID(s)
	}
	return nodeID(s) + "\n" + automaton.FormatSet(a.Origin(s))
}

type edge struct {
	from, to automaton.State
	symbols  []string
}

// groupEdges merges transitions by (from, to), keeping first-seen order.
func groupEdges(a *automaton.Automaton) []*edge {
	type pair struct{ from, to automaton.State }
	var out []*edge
	seen := make(map[pair]*edge)
	for _, t := range a.Transitions() {
		for _, to := range t.To {
			p := pair{t.From, to}
			e, ok := seen[p]
			if !ok {
				e = &edge{from: t.From, to: to}
				seen[p] = e
				out = append(out, e)
			}
			e.symbols = append(e.symbols, t.Symbol.String())
		}
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
