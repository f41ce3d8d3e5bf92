// Package nodelink renders automata as state diagrams.
//
// # Overview
//
// This package produces the classic textbook picture of an automaton using
// Graphviz: states are circles named q0, q1, ..., accepting states are
// double circles, and an arrow from nowhere points at the start state.
// Edges between the same two states share one arrow labeled with all of
// their symbols.
//
// # Usage
//
// Convert an automaton to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(dfa, nodelink.Options{Origins: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PNG output:
//
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Origins: label generated states with the source states they came from
//   - Title: caption drawn above the diagram
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering;
// no Graphviz installation is required.
package nodelink
