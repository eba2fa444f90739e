// Package nodelink renders value chains as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the other render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Layout
//
// Nothing is laid out automatically. The DOT output selects the neato
// engine and pins every node at its editor position, so the picture matches
// what the user arranged. Fill colors follow the node's override or its
// type default; label colors follow the contrast rule in package color.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering. PDF and scaled PNG conversion requires librsvg
// (rsvg-convert).
package nodelink
