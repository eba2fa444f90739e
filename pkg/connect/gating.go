package connect

import (
	"slices"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/errors"
)

var allowed = map[chain.NodeType][]Direction{
	chain.Primary:  {Left, Right},
	chain.External: {Left, Right},
	chain.Support:  {Top, Bottom},
	chain.Custom:   {Left, Right, Top, Bottom},
}

// Allowed returns the connector sides a node of type t exposes.
// Unknown types expose every side, like custom nodes.
func Allowed(t chain.NodeType) []Direction {
	if dirs, ok := allowed[t]; ok {
		return slices.Clone(dirs)
	}
	return slices.Clone(Directions)
}

// Permits reports whether a node of type t exposes side d.
func Permits(t chain.NodeType, d Direction) bool {
	return slices.Contains(Allowed(t), d)
}

// ConnectAllowed is [ConnectNearest] restricted to the sides the anchor's
// type exposes. Unlike ConnectNearest it reports misuse as errors:
// ErrCodeNodeNotFound for a missing anchor, ErrCodeInvalidDirection and
// ErrCodeDirectionNotAllowed. Finding no neighbor is still not an error.
func ConnectAllowed(g *chain.Graph, nodeID string, d Direction) (*chain.Graph, chain.Edge, bool, error) {
	anchor, ok := g.Node(nodeID)
	if !ok {
		return g, chain.Edge{}, false, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", nodeID)
	}
	if !d.Valid() {
		return g, chain.Edge{}, false, errors.New(errors.ErrCodeInvalidDirection, "unknown direction %q", d)
	}
	if !Permits(anchor.Type, d) {
		return g, chain.Edge{}, false, errors.New(errors.ErrCodeDirectionNotAllowed,
			"%s nodes connect %v, not %s", anchor.Type, Allowed(anchor.Type), d)
	}
	out, e, ok := ConnectNearest(g, nodeID, d)
	return out, e, ok, nil
}
