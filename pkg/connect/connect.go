// Package connect links a node to its nearest neighbor in a compass
// direction.
//
// A node exposes connector buttons on its sides. Pressing one searches the
// nodes lying in that direction and roughly aligned on the perpendicular
// axis (within [Band] units), picks the closest along the primary axis and
// adds an edge between the two. Left and top mean incoming: the neighbor
// becomes the edge source. Right and bottom mean outgoing: the anchor is
// the source.
//
// The search itself ignores node types. Which buttons a node shows is a
// separate, type-driven decision exposed through [Allowed] and [Permits];
// [ConnectAllowed] combines both for callers that want the gating enforced.
package connect

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/errors"
)

// Band is the lateral tolerance: a candidate must lie strictly closer than
// this on the axis perpendicular to the search direction.
const Band = 150.0

// Direction is a compass side of a node.
type Direction string

const (
	Left   Direction = "left"
	Right  Direction = "right"
	Top    Direction = "top"
	Bottom Direction = "bottom"
)

// Directions lists all four sides.
var Directions = []Direction{Left, Right, Top, Bottom}

// Valid reports whether d is one of the four sides.
func (d Direction) Valid() bool {
	return slices.Contains(Directions, d)
}

// Opposite returns the side facing d.
func (d Direction) Opposite() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Top:
		return Bottom
	case Bottom:
		return Top
	}
	return d
}

// Incoming reports whether edges created from side d point at the anchor.
func (d Direction) Incoming() bool {
	return d == Left || d == Top
}

// ParseDirection parses s case-insensitively.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", errors.New(errors.ErrCodeInvalidDirection, "unknown direction %q (want left, right, top or bottom)", s)
	}
	return d, nil
}

// along returns the coordinate of p on the search axis of d and on the
// perpendicular axis, with the search coordinate negated for left and top
// so that "in direction d" always means "greater".
func along(d Direction, p chain.Position) (primary, lateral float64) {
	switch d {
	case Left:
		return -p.X, p.Y
	case Right:
		return p.X, p.Y
	case Top:
		return -p.Y, p.X
	default:
		return p.Y, p.X
	}
}

// Candidates returns the nodes that lie strictly beyond anchor in
// direction d and within [Band] on the perpendicular axis, in the order
// they appear in nodes. The anchor itself is never a candidate.
func Candidates(nodes []chain.Node, anchor chain.Node, d Direction) []chain.Node {
	if !d.Valid() {
		return nil
	}
	ap, al := along(d, anchor.Position)
	var out []chain.Node
	for _, n := range nodes {
		if n.ID == anchor.ID {
			continue
		}
		np, nl := along(d, n.Position)
		if np > ap && math.Abs(nl-al) < Band {
			out = append(out, n)
		}
	}
	return out
}

// Nearest returns the candidate closest to anchor along the search axis.
// Ties go to the node that comes first in nodes.
func Nearest(nodes []chain.Node, anchor chain.Node, d Direction) (chain.Node, bool) {
	cands := Candidates(nodes, anchor, d)
	if len(cands) == 0 {
		return chain.Node{}, false
	}
	ap, _ := along(d, anchor.Position)
	best, bestDist := cands[0], math.Inf(1)
	for _, n := range cands {
		np, _ := along(d, n.Position)
		if dist := math.Abs(np - ap); dist < bestDist {
			best, bestDist = n, dist
		}
	}
	return best, true
}

// ConnectNearest adds an edge between node nodeID and its nearest neighbor
// in direction d. It returns the resulting graph, the edge and true, or the
// unchanged g and false when the anchor is missing, d is invalid or no node
// qualifies. Connecting twice yields the same edge and no duplicate.
func ConnectNearest(g *chain.Graph, nodeID string, d Direction) (*chain.Graph, chain.Edge, bool) {
	anchor, ok := g.Node(nodeID)
	if !ok {
		return g, chain.Edge{}, false
	}
	target, ok := Nearest(g.Nodes(), anchor, d)
	if !ok {
		return g, chain.Edge{}, false
	}
	source, sink := anchor.ID, target.ID
	if d.Incoming() {
		source, sink = sink, source
	}
	out, e, err := g.AddEdge(source, sink, chain.Floating)
	if err != nil {
		return g, chain.Edge{}, false
	}
	return out, e, true
}
