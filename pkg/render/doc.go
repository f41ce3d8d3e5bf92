// Package render groups the visual output formats for automata.
//
// The [nodelink] subpackage draws an automaton as a state diagram: states
// are circles (double circles when accepting), an invisible point marks the
// start state, and edges are labeled with their symbols. Generated states
// can show the set of states they were built from.
//
//	dot := nodelink.ToDOT(dfa, nodelink.Options{Origins: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/powerset/pkg/render/nodelink
package render
