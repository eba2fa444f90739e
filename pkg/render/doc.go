// Package render provides format conversion for rendered diagrams.
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). The [nodelink] subpackage
// produces the SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//
// [nodelink]: github.com/matzehuels/valuechain/pkg/render/nodelink
package render
