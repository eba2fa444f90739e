package nodelink

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/color"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node type and description below the label.
	// When false, only the label is shown.
	Detailed bool
}

// ToDOT converts a value chain to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Nodes are pinned at their editor positions (the neato engine honors
// pos="x,y!"), with y negated because the editor plane grows downward.
// Each node is filled with its resolved color and labeled in black or
// white, whichever reads better. Edges carry no ports, so Graphviz attaches
// them to the nearest side of each box.
func ToDOT(g *chain.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph valuechain {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#64748b\", arrowsize=0.8];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %s -> %s [id=%s];\n", quote(e.Source), quote(e.Target), quote(e.ID))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n chain.Node, detailed bool) string {
	if !detailed {
		return n.Data.Label
	}
	parts := []string{n.Data.Label, "(" + n.Type.DisplayName() + ")"}
	if n.Data.Description != "" {
		parts = append(parts, n.Data.Description)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n chain.Node, detailed bool) []string {
	fill := FillColor(n)
	attrs := []string{
		"label=" + quote(fmtLabel(n, detailed)),
		"pos=" + quote(fmtPos(n.Position)),
		"fillcolor=" + quote(fill),
		"fontcolor=" + quote(color.TextColor(fill)),
	}
	if n.Data.Description != "" {
		attrs = append(attrs, "tooltip="+quote(n.Data.Description))
	}
	return attrs
}

// FillColor returns the hex color node n is painted with. Overrides that
// do not parse as colors fall back to the type default.
func FillColor(n chain.Node) string {
	resolved := color.Resolve(n.Type, n.Data.Color)
	if c, ok := color.Parse(resolved); ok {
		return c.Hex()
	}
	return color.TypeDefault(n.Type)
}

func fmtPos(p chain.Position) string {
	y := -p.Y
	if y == 0 {
		y = 0 // no "-0"
	}
	return strconv.FormatFloat(p.X, 'f', -1, 64) + "," + strconv.FormatFloat(y, 'f', -1, 64) + "!"
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
